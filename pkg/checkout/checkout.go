// Package checkout validates the delivery form and turns a cart into an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"storefront/pkg/cart"
	"storefront/pkg/logger"
	"storefront/pkg/order"
)

// CustomerDetails is the delivery form submitted at checkout.
type CustomerDetails struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,len=10,number"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	PinCode string `json:"pinCode" validate:"required,len=6,number"`
}

var validate = newValidator()

// newValidator reports fields by their json names so failures map directly
// onto form keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages holds the form messages per field: first for a missing
// value, second for a malformed one.
var fieldMessages = map[string][2]string{
	"name":    {"Name is required"},
	"phone":   {"Phone number is required", "Phone must be 10 digits"},
	"address": {"Address is required"},
	"city":    {"City is required"},
	"state":   {"State is required"},
	"pinCode": {"PIN code is required", "PIN code must be 6 digits"},
}

// FieldErrors maps form fields to validation messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// Normalize returns the details with surrounding whitespace removed.
func (d CustomerDetails) Normalize() CustomerDetails {
	return CustomerDetails{
		Name:    strings.TrimSpace(d.Name),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
		State:   strings.TrimSpace(d.State),
		PinCode: strings.TrimSpace(d.PinCode),
	}
}

// Validate checks every field and returns all failures at once, or nil.
func (d CustomerDetails) Validate() error {
	err := validate.Struct(d.Normalize())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate checkout form: %w", err)
	}

	errs := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		msgs := fieldMessages[fe.Field()]
		if fe.Tag() == "required" {
			errs[fe.Field()] = msgs[0]
		} else {
			errs[fe.Field()] = msgs[1]
		}
	}
	return errs
}

// Placer submits an order to the order backend.
type Placer interface {
	Place(ctx context.Context, items []order.Item, customer order.Customer, payment order.Payment) (order.ID, error)
}

// ErrEmptyCart is returned when checking out a cart with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// Service places orders from carts.
type Service struct {
	placer Placer
	log    *logger.Logger
}

// NewService returns a checkout service submitting orders to placer.
func NewService(placer Placer, log *logger.Logger) *Service {
	return &Service{placer: placer, log: log}
}

// PlaceOrder validates the form and submits the cart lines. The cart is
// cleared only after the order is accepted; on any error it is left as is.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Store, details CustomerDetails, payment order.Payment) (order.ID, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}
	if err := details.Validate(); err != nil {
		return 0, err
	}

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{ProductID: l.Product.ID, Quantity: l.Quantity})
	}

	d := details.Normalize()
	id, err := s.placer.Place(ctx, items, order.Customer(d), payment)
	if err != nil {
		s.log.Warn(ctx, "order placement failed", "slot", c.Slot(), "error", err)
		return 0, fmt.Errorf("place order: %w", err)
	}

	c.Clear(ctx)
	return id, nil
}
