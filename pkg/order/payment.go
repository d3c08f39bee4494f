package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Method is how the customer pays: CashOnDelivery or UPI.
type Method interface {
	kind() string
}

// CashOnDelivery is paid to the courier on delivery.
type CashOnDelivery struct{}

// UPI is paid by a UPI transfer from the given UPI id.
type UPI struct {
	ID string
}

func (CashOnDelivery) kind() string { return "cashOnDelivery" }
func (UPI) kind() string            { return "upi" }

// Payment carries a Method and gives it a tagged JSON form:
// {"kind":"cashOnDelivery"} or {"kind":"upi","upiId":"..."}.
type Payment struct {
	Method Method
}

// ErrInvalidPayment indicates a missing or incomplete payment method.
var ErrInvalidPayment = errors.New("invalid payment method")

// Validate checks that a method is set and a UPI payment names its UPI id.
func (p Payment) Validate() error {
	switch m := p.Method.(type) {
	case CashOnDelivery:
		return nil
	case UPI:
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("%w: upi id is required", ErrInvalidPayment)
		}
		return nil
	default:
		return fmt.Errorf("%w: no method selected", ErrInvalidPayment)
	}
}

type paymentJSON struct {
	Kind  string `json:"kind"`
	UPIID string `json:"upiId,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (p Payment) MarshalJSON() ([]byte, error) {
	switch m := p.Method.(type) {
	case CashOnDelivery:
		return json.Marshal(paymentJSON{Kind: m.kind()})
	case UPI:
		return json.Marshal(paymentJSON{Kind: m.kind(), UPIID: m.ID})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payment) UnmarshalJSON(b []byte) error {
	var v *paymentJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		p.Method = nil
		return nil
	}
	switch v.Kind {
	case CashOnDelivery{}.kind():
		p.Method = CashOnDelivery{}
	case UPI{}.kind():
		p.Method = UPI{ID: v.UPIID}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPayment, v.Kind)
	}
	return nil
}
