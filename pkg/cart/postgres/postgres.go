// Package postgres stores carts in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"storefront/pkg/cart"
)

// Storage persists carts in the cart_slots table:
// CREATE TABLE cart_slots (name TEXT PRIMARY KEY, data TEXT NOT NULL, updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW());
type Storage struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed cart storage.
func New(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Load reads the data of a slot.
func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT data FROM cart_slots WHERE name=$1", slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrNoData
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// Save upserts the data of a slot.
func (s *Storage) Save(ctx context.Context, slot string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO cart_slots (name, data, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		slot, string(data))
	return err
}
