// Package cart holds the shopping cart of one storefront session.
//
// A Store keeps an ordered list of lines, at most one per product, and
// writes the whole list to its storage slot after every mutation. Opening a
// store restores the list from the slot; missing or unreadable data yields
// an empty cart.
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/pkg/catalog"
	"storefront/pkg/logger"
)

// Line is one product in the cart. Product is a snapshot taken when the
// product was first added and is never refreshed from the catalog.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price × quantity in minor units.
func (l Line) Subtotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Storage persists serialized carts under named slots.
type Storage interface {
	Load(ctx context.Context, slot string) ([]byte, error)
	Save(ctx context.Context, slot string, data []byte) error
}

// ErrNoData is returned by Storage.Load when the slot holds nothing.
var ErrNoData = errors.New("cart slot is empty")

// Store is a cart bound to one storage slot. It is safe for concurrent use;
// operations apply one at a time, each including its slot write.
type Store struct {
	mu      sync.Mutex
	storage Storage
	slot    string
	log     *logger.Logger
	lines   []Line
}

// Open restores the cart held in slot. It never fails: absent or invalid
// data leaves the cart empty.
func Open(ctx context.Context, storage Storage, slot string, log *logger.Logger) *Store {
	s := &Store{storage: storage, slot: slot, log: log}

	data, err := storage.Load(ctx, slot)
	switch {
	case errors.Is(err, ErrNoData):
		return s
	case err != nil:
		log.Warn(ctx, "cart load failed, starting empty", "slot", slot, "error", err)
		return s
	}

	lines, err := Decode(data)
	if err != nil {
		log.Warn(ctx, "discarding unreadable cart", "slot", slot, "error", err)
		return s
	}
	s.lines = lines
	return s
}

// Slot returns the name of the storage slot backing the store.
func (s *Store) Slot() string {
	return s.slot
}

// AddItem adds quantity units of product. An existing line for the product
// is incremented; otherwise a line is appended. Quantities below one are
// ignored.
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
	} else {
		s.lines = append(s.lines, Line{Product: product, Quantity: quantity})
	}
	s.persist(ctx)
}

// RemoveItem deletes the line for id if there is one.
func (s *Store) RemoveItem(ctx context.Context, id catalog.ProductID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(ctx, id)
}

// UpdateQuantity sets the quantity of the line for id. A quantity of zero
// or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id catalog.ProductID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(ctx, id)
		return
	}
	i := s.index(id)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = quantity
	s.persist(ctx)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Count returns the total number of units across all lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// TotalMinor returns the exact cart total in minor currency units.
func (s *Store) TotalMinor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// TotalPrice returns the total in major currency units. It is meant for
// display only; use TotalMinor for arithmetic.
func (s *Store) TotalPrice() float64 {
	return float64(s.TotalMinor()) / 100
}

// TotalDisplay returns the total in major units with two decimal places.
func (s *Store) TotalDisplay() decimal.Decimal {
	return decimal.New(s.TotalMinor(), -2)
}

func (s *Store) index(id catalog.ProductID) int {
	for i, l := range s.lines {
		if l.Product.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) remove(ctx context.Context, id catalog.ProductID) {
	i := s.index(id)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persist(ctx)
}

// persist writes the current lines to the slot. Failures are logged only;
// the in-memory cart stays authoritative until the next write.
func (s *Store) persist(ctx context.Context) {
	data, err := Encode(s.lines)
	if err != nil {
		s.log.Error(ctx, "encode cart", "slot", s.slot, "error", err)
		return
	}
	if err := s.storage.Save(ctx, s.slot, data); err != nil {
		s.log.Warn(ctx, "cart write failed", "slot", s.slot, "error", err)
	}
}
