// Package redis stores carts in Redis, one key per slot.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"storefront/pkg/cart"
)

// Storage implements cart.Storage on a Redis client. Each write refreshes the
// key's expiry; a zero TTL keeps keys forever.
type Storage struct {
	client *goredis.Client
	ttl    time.Duration
}

// New creates Redis-backed cart storage.
func New(client *goredis.Client, ttl time.Duration) *Storage {
	return &Storage{client: client, ttl: ttl}
}

// Load reads the slot key.
func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	data, err := s.client.Get(ctx, slot).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, cart.ErrNoData
	}
	return data, err
}

// Save writes the slot key.
func (s *Storage) Save(ctx context.Context, slot string, data []byte) error {
	return s.client.Set(ctx, slot, data, s.ttl).Err()
}
