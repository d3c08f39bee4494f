package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/pkg/order"
)

// Repository persists orders in PostgreSQL. Items, customer and payment are
// stored as JSONB documents.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectOrder = "SELECT id,items,customer,payment,payment_status,total_amount FROM orders"

// Create inserts a new order and returns its id.
func (r *Repository) Create(ctx context.Context, o order.Order) (order.ID, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return 0, fmt.Errorf("encode items: %w", err)
	}
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return 0, fmt.Errorf("encode customer: %w", err)
	}
	payment, err := json.Marshal(o.Payment)
	if err != nil {
		return 0, fmt.Errorf("encode payment: %w", err)
	}

	var id int64
	err = r.db.QueryRowContext(ctx,
		"INSERT INTO orders (items,customer,payment,payment_status,total_amount) VALUES ($1,$2,$3,$4,$5) RETURNING id",
		items, customer, payment, string(o.PaymentStatus), o.TotalAmount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return order.ID(id), nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id order.ID) (order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, selectOrder+" WHERE id=$1", int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, order.ErrNotFound
	}
	return o, err
}

// List fetches all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrder+" ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdatePaymentStatus changes the payment status of an existing order.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id order.ID, status order.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, "UPDATE orders SET payment_status=$2 WHERE id=$1", int64(id), string(status))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return order.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (order.Order, error) {
	var o order.Order
	var id int64
	var status string
	var items, customer, payment []byte
	if err := row.Scan(&id, &items, &customer, &payment, &status, &o.TotalAmount); err != nil {
		return order.Order{}, err
	}
	o.ID = order.ID(id)
	o.PaymentStatus = order.PaymentStatus(status)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("decode items of order %d: %w", id, err)
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return order.Order{}, fmt.Errorf("decode customer of order %d: %w", id, err)
	}
	if err := json.Unmarshal(payment, &o.Payment); err != nil {
		return order.Order{}, fmt.Errorf("decode payment of order %d: %w", id, err)
	}
	return o, nil
}
