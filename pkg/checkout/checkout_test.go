package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/cart"
	cartmem "storefront/pkg/cart/memory"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
)

func validDetails() CustomerDetails {
	return CustomerDetails{
		Name:    "Asha Menon",
		Phone:   "9876543210",
		Address: "12 Spice Lane",
		City:    "Kochi",
		State:   "Kerala",
		PinCode: "682001",
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*CustomerDetails)
		want   FieldErrors
	}{
		"valid": {mutate: func(*CustomerDetails) {}},
		"surrounding spaces are trimmed": {mutate: func(d *CustomerDetails) {
			d.Phone = " 9876543210 "
			d.PinCode = "682001\t"
		}},
		"blank name": {
			mutate: func(d *CustomerDetails) { d.Name = "   " },
			want:   FieldErrors{"name": "Name is required"},
		},
		"missing phone": {
			mutate: func(d *CustomerDetails) { d.Phone = "" },
			want:   FieldErrors{"phone": "Phone number is required"},
		},
		"short phone": {
			mutate: func(d *CustomerDetails) { d.Phone = "98765" },
			want:   FieldErrors{"phone": "Phone must be 10 digits"},
		},
		"phone with letters": {
			mutate: func(d *CustomerDetails) { d.Phone = "98765abcde" },
			want:   FieldErrors{"phone": "Phone must be 10 digits"},
		},
		"pin code too long": {
			mutate: func(d *CustomerDetails) { d.PinCode = "6820011" },
			want:   FieldErrors{"pinCode": "PIN code must be 6 digits"},
		},
		"everything missing": {
			mutate: func(d *CustomerDetails) { *d = CustomerDetails{} },
			want: FieldErrors{
				"name":    "Name is required",
				"phone":   "Phone number is required",
				"address": "Address is required",
				"city":    "City is required",
				"state":   "State is required",
				"pinCode": "PIN code is required",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			d := validDetails()
			tc.mutate(&d)
			err := d.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
			assert.Equal(t, tc.want, fe)
		})
	}
}

func TestValidateRejectsSignsAndDecimals(t *testing.T) {
	for _, tc := range []struct {
		field, phone, pin, want string
	}{
		{"phone", "+987654321", "682001", "Phone must be 10 digits"},
		{"phone", "98765.4321", "682001", "Phone must be 10 digits"},
		{"pinCode", "9876543210", "-68200", "PIN code must be 6 digits"},
		{"pinCode", "9876543210", "6820.1", "PIN code must be 6 digits"},
	} {
		d := validDetails()
		d.Phone, d.PinCode = tc.phone, tc.pin
		var fe FieldErrors
		require.ErrorAs(t, d.Validate(), &fe, "%s / %s", tc.phone, tc.pin)
		assert.Equal(t, FieldErrors{tc.field: tc.want}, fe)
	}
}

func TestFieldErrorsMessageIsSorted(t *testing.T) {
	fe := FieldErrors{"phone": "Phone must be 10 digits", "city": "City is required"}
	assert.Equal(t, "invalid checkout form: city: City is required; phone: Phone must be 10 digits", fe.Error())
}

type placerFunc func(ctx context.Context, items []order.Item, customer order.Customer, payment order.Payment) (order.ID, error)

func (f placerFunc) Place(ctx context.Context, items []order.Item, customer order.Customer, payment order.Payment) (order.ID, error) {
	return f(ctx, items, customer, payment)
}

func cartWithItems(t *testing.T) (*cart.Store, cart.Storage) {
	t.Helper()
	ctx := context.Background()
	storage := cartmem.New()
	c := cart.Open(ctx, storage, "cart:s1", logger.NewNop())
	c.AddItem(ctx, catalog.Product{ID: 1, Name: "Cardamom", Price: 45000, InStock: true}, 2)
	c.AddItem(ctx, catalog.Product{ID: 2, Name: "Pepper", Price: 32000, InStock: true}, 1)
	return c, storage
}

func TestPlaceOrderClearsCartOnSuccess(t *testing.T) {
	ctx := context.Background()
	c, storage := cartWithItems(t)
	var gotItems []order.Item
	var gotCustomer order.Customer
	svc := NewService(placerFunc(func(ctx context.Context, items []order.Item, customer order.Customer, payment order.Payment) (order.ID, error) {
		gotItems, gotCustomer = items, customer
		return 77, nil
	}), logger.NewNop())

	d := validDetails()
	d.Name = "  Asha Menon "
	id, err := svc.PlaceOrder(ctx, c, d, order.Payment{Method: order.CashOnDelivery{}})
	require.NoError(t, err)
	assert.Equal(t, order.ID(77), id)
	assert.Equal(t, []order.Item{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, gotItems)
	assert.Equal(t, "Asha Menon", gotCustomer.Name)

	assert.Equal(t, 0, c.Len())
	data, err := storage.Load(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestPlaceOrderKeepsCartOnFailure(t *testing.T) {
	ctx := context.Background()
	placed := 0
	svc := NewService(placerFunc(func(context.Context, []order.Item, order.Customer, order.Payment) (order.ID, error) {
		placed++
		return 0, errors.New("backend unavailable")
	}), logger.NewNop())

	c, _ := cartWithItems(t)
	_, err := svc.PlaceOrder(ctx, c, validDetails(), order.Payment{Method: order.CashOnDelivery{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Equal(t, 2, c.Len())

	bad := validDetails()
	bad.PinCode = "12"
	_, err = svc.PlaceOrder(ctx, c, bad, order.Payment{Method: order.CashOnDelivery{}})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "PIN code must be 6 digits", fe["pinCode"])
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, placed, "invalid form must block submission")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	ctx := context.Background()
	c := cart.Open(ctx, cartmem.New(), "cart:empty", logger.NewNop())
	svc := NewService(placerFunc(func(context.Context, []order.Item, order.Customer, order.Payment) (order.ID, error) {
		t.Fatal("placer must not be called for an empty cart")
		return 0, nil
	}), logger.NewNop())

	_, err := svc.PlaceOrder(ctx, c, validDetails(), order.Payment{Method: order.CashOnDelivery{}})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlacedOrderTrackableWithTypedPhone(t *testing.T) {
	ctx := context.Background()
	products := catalogmem.New()
	require.NoError(t, catalogmem.Seed(ctx, products))
	orders := order.NewService(products, ordermem.New(), logger.NewNop())
	svc := NewService(orders, logger.NewNop())

	p, err := products.Product(ctx, 1)
	require.NoError(t, err)
	c := cart.Open(ctx, cartmem.New(), "cart:s2", logger.NewNop())
	c.AddItem(ctx, p, 1)

	d := validDetails()
	d.Phone = " 9876543210 "
	id, err := svc.PlaceOrder(ctx, c, d, order.Payment{Method: order.CashOnDelivery{}})
	require.NoError(t, err)

	o, err := orders.Track(ctx, id, " 9876543210 ")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", o.Customer.Phone)
	assert.Equal(t, p.Price, o.TotalAmount)
}
