// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
type Repository struct {
	mu     sync.RWMutex
	orders map[order.ID]order.Order
	nextID order.ID
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[order.ID]order.Order), nextID: 1}
}

// Create stores the order under the next free id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID
	r.nextID++
	o.Items = append([]order.Item(nil), o.Items...)
	r.orders[o.ID] = o
	return o.ID, nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id order.ID) (order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// UpdatePaymentStatus changes the payment status of an existing order.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id order.ID, status order.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.PaymentStatus = status
	r.orders[id] = o
	return nil
}
