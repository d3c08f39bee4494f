package order

import (
	"context"
	"errors"
	"fmt"

	"storefront/pkg/catalog"
	"storefront/pkg/logger"
)

// Errors returned by Service.Place.
var (
	ErrNoItems     = errors.New("order has no items")
	ErrUnavailable = errors.New("product unavailable")
	ErrQuantity    = errors.New("quantity must be at least one")
)

// Service places and tracks orders against the catalog.
type Service struct {
	products catalog.Repository
	orders   Repository
	log      *logger.Logger
}

// NewService returns an order service.
func NewService(products catalog.Repository, orders Repository, log *logger.Logger) *Service {
	return &Service{products: products, orders: orders, log: log}
}

// Place prices items from the current catalog and stores a pending order.
// Every product must exist and be in stock.
func (s *Service) Place(ctx context.Context, items []Item, customer Customer, payment Payment) (ID, error) {
	if len(items) == 0 {
		return 0, ErrNoItems
	}
	if err := payment.Validate(); err != nil {
		return 0, err
	}

	var total int64
	for _, it := range items {
		if it.Quantity < 1 {
			return 0, fmt.Errorf("product %d: %w", it.ProductID, ErrQuantity)
		}
		p, err := s.products.Product(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, fmt.Errorf("product %d: %w", it.ProductID, ErrUnavailable)
		}
		if err != nil {
			return 0, fmt.Errorf("load product %d: %w", it.ProductID, err)
		}
		if !p.InStock {
			return 0, fmt.Errorf("product %d out of stock: %w", it.ProductID, ErrUnavailable)
		}
		total += p.Price * int64(it.Quantity)
	}

	id, err := s.orders.Create(ctx, Order{
		Items:         items,
		Customer:      customer,
		Payment:       payment,
		PaymentStatus: PaymentPending,
		TotalAmount:   total,
	})
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	s.log.Info(ctx, "order placed", "order_id", id, "items", len(items), "total", total)
	return id, nil
}

// Track looks up an order by id and checkout phone number.
func (s *Service) Track(ctx context.Context, id ID, phone string) (Order, error) {
	return Track(ctx, s.orders, id, phone)
}
