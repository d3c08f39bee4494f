package order

import (
	"context"
	"errors"
	"strings"

	"storefront/pkg/catalog"
)

// ID identifies a placed order.
type ID uint64

// Item is one ordered product and its quantity.
type Item struct {
	ProductID catalog.ProductID `json:"productId,string"`
	Quantity  int               `json:"quantity"`
}

// Customer holds the delivery details captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
}

// PaymentStatus tracks whether an order has been paid.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

// Order represents a customer purchase order.
type Order struct {
	ID            ID            `json:"orderId,string"`
	Items         []Item        `json:"cartItems"`
	Customer      Customer      `json:"customerDetails"`
	Payment       Payment       `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TotalAmount   int64         `json:"totalAmount,string"`
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Create(ctx context.Context, o Order) (ID, error)
	Get(ctx context.Context, id ID) (Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdatePaymentStatus(ctx context.Context, id ID, status PaymentStatus) error
}

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Track returns the order only when phone matches the one given at checkout.
// Surrounding whitespace is ignored on both sides. A mismatch is reported as
// ErrNotFound so order ids cannot be probed.
func Track(ctx context.Context, repo Repository, id ID, phone string) (Order, error) {
	o, err := repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if strings.TrimSpace(o.Customer.Phone) != strings.TrimSpace(phone) {
		return Order{}, ErrNotFound
	}
	return o, nil
}
