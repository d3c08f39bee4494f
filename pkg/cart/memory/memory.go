// Package memory implements in-memory cart storage.
package memory

import (
	"context"
	"sync"

	"storefront/pkg/cart"
)

// Storage keeps serialized carts in a map. It implements cart.Storage.
type Storage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// New creates empty storage.
func New() *Storage {
	return &Storage{slots: make(map[string][]byte)}
}

// Load returns a copy of the data held in slot.
func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.slots[slot]
	if !ok {
		return nil, cart.ErrNoData
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the data held in slot.
func (s *Storage) Save(ctx context.Context, slot string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot] = append([]byte(nil), data...)
	return nil
}
