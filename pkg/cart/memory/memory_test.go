package memory

import (
	"context"
	"errors"
	"testing"

	"storefront/pkg/cart"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Load(ctx, "cart:a"); !errors.Is(err, cart.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	data := []byte(`[]`)
	if err := s.Save(ctx, "cart:a", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	data[0] = 'x'
	got, err := s.Load(ctx, "cart:a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != "[]" {
		t.Fatalf("stored data aliased caller buffer: %q", got)
	}
}
