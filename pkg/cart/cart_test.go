package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/pkg/cart"
	"storefront/pkg/cart/memory"
	"storefront/pkg/catalog"
	"storefront/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const slot = "cart:test"

func product(id catalog.ProductID, price int64) catalog.Product {
	return catalog.Product{ID: id, Name: "p", Price: price, CategoryID: 1, InStock: true}
}

func openEmpty(t *testing.T) (*cart.Store, *memory.Storage) {
	t.Helper()
	storage := memory.New()
	return cart.Open(context.Background(), storage, slot, logger.NewNop()), storage
}

func persisted(t *testing.T, storage cart.Storage) []cart.Line {
	t.Helper()
	data, err := storage.Load(context.Background(), slot)
	require.NoError(t, err)
	lines, err := cart.Decode(data)
	require.NoError(t, err)
	return lines
}

func TestAddItemMergesByProduct(t *testing.T) {
	ctx := context.Background()
	s, storage := openEmpty(t)

	s.AddItem(ctx, product(7, 100), 2)
	s.AddItem(ctx, product(7, 100), 3)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, lines, persisted(t, storage))
}

func TestAddItemSumsArbitrarySequences(t *testing.T) {
	ctx := context.Background()
	for _, adds := range [][]int{{1}, {1, 1, 1}, {4, 9, 2, 7}, {100, 1}} {
		s, _ := openEmpty(t)
		want := 0
		for _, q := range adds {
			s.AddItem(ctx, product(3, 50), q)
			want += q
		}
		require.Equal(t, 1, s.Len())
		assert.Equal(t, want, s.Lines()[0].Quantity, "adds %v", adds)
	}
}

func TestAddItemKeepsFirstAdditionOrderAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)

	s.AddItem(ctx, product(2, 100), 1)
	s.AddItem(ctx, product(1, 100), 1)
	repriced := product(2, 999)
	s.AddItem(ctx, repriced, 1)

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, catalog.ProductID(2), lines[0].Product.ID)
	assert.Equal(t, catalog.ProductID(1), lines[1].Product.ID)
	assert.Equal(t, int64(100), lines[0].Product.Price, "snapshot must not be refreshed")
}

func TestAddItemIgnoresNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	s, storage := openEmpty(t)

	s.AddItem(ctx, product(1, 100), 0)
	s.AddItem(ctx, product(1, 100), -3)
	assert.Equal(t, 0, s.Len())
	_, err := storage.Load(ctx, slot)
	assert.ErrorIs(t, err, cart.ErrNoData)

	s.AddItem(ctx, product(1, 100), 2)
	s.AddItem(ctx, product(1, 100), -5)
	assert.Equal(t, 2, s.Lines()[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	tests := map[string]struct {
		quantity int
		want     []int
	}{
		"sets absolute value": {quantity: 9, want: []int{9, 1}},
		"zero removes":        {quantity: 0, want: []int{1}},
		"negative removes":    {quantity: -1, want: []int{1}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s, storage := openEmpty(t)
			s.AddItem(ctx, product(1, 100), 4)
			s.AddItem(ctx, product(2, 100), 1)

			s.UpdateQuantity(ctx, 1, tc.quantity)

			got := make([]int, 0)
			for _, l := range s.Lines() {
				got = append(got, l.Quantity)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, s.Lines(), persisted(t, storage))
		})
	}
}

func TestUpdateQuantityAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)
	s.AddItem(ctx, product(1, 100), 2)

	before := s.Lines()
	s.UpdateQuantity(ctx, 42, 5)
	assert.Equal(t, before, s.Lines())
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	s, storage := openEmpty(t)
	s.AddItem(ctx, product(1, 100), 1)
	s.AddItem(ctx, product(2, 200), 1)
	s.AddItem(ctx, product(3, 300), 1)

	s.RemoveItem(ctx, 2)
	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, catalog.ProductID(1), lines[0].Product.ID)
	assert.Equal(t, catalog.ProductID(3), lines[1].Product.ID)

	before := s.Lines()
	s.RemoveItem(ctx, 99)
	assert.Equal(t, before, s.Lines())
	assert.Equal(t, before, persisted(t, storage))
}

func TestClearPersistsEmptyCart(t *testing.T) {
	ctx := context.Background()
	s, storage := openEmpty(t)
	s.AddItem(ctx, product(1, 100), 3)

	s.Clear(ctx)

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, persisted(t, storage))
	reopened := cart.Open(ctx, storage, slot, logger.NewNop())
	assert.Equal(t, 0, reopened.Len())
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)
	s.AddItem(ctx, product(1, 10000), 2)
	s.AddItem(ctx, product(2, 2550), 1)

	assert.Equal(t, int64(22550), s.TotalMinor())
	assert.InDelta(t, 225.50, s.TotalPrice(), 1e-9)
	assert.Equal(t, "225.50", s.TotalDisplay().StringFixed(2))
	assert.Equal(t, 3, s.Count())
}

func TestOpenRestoresPersistedCart(t *testing.T) {
	ctx := context.Background()
	s, storage := openEmpty(t)
	img := "https://cdn.example/saffron.jpg"
	big := catalog.Product{
		ID:          9007199254740993,
		Name:        "Saffron",
		Description: "Kashmiri mongra",
		Price:       9007199254740993,
		CategoryID:  9007199254740995,
		InStock:     true,
		ImageURL:    &img,
	}
	s.AddItem(ctx, big, 2)
	s.AddItem(ctx, product(5, 100), 1)

	reopened := cart.Open(ctx, storage, slot, logger.NewNop())
	assert.Equal(t, s.Lines(), reopened.Lines())
	assert.Equal(t, catalog.ProductID(9007199254740993), reopened.Lines()[0].Product.ID)
}

func TestOpenDegradesToEmpty(t *testing.T) {
	tests := map[string][]byte{
		"not json":           []byte(`{oops`),
		"numeric id":         []byte(`[{"productId":1,"categoryId":"1","price":"1","quantity":1}]`),
		"zero quantity":      []byte(`[{"productId":"1","categoryId":"1","price":"1","quantity":0}]`),
		"duplicate products": []byte(`[{"productId":"1","categoryId":"1","price":"1","quantity":1},{"productId":"1","categoryId":"1","price":"1","quantity":2}]`),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			storage := memory.New()
			require.NoError(t, storage.Save(ctx, slot, data))

			s := cart.Open(ctx, storage, slot, logger.NewNop())
			assert.Equal(t, 0, s.Len())
		})
	}
}

type failingStorage struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStorage) Load(ctx context.Context, slot string) ([]byte, error) {
	return nil, f.loadErr
}

func (f *failingStorage) Save(ctx context.Context, slot string, data []byte) error {
	f.saves++
	return f.saveErr
}

func TestStorageFailuresAreNotFatal(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{loadErr: errors.New("down"), saveErr: errors.New("down")}

	s := cart.Open(ctx, storage, slot, logger.NewNop())
	assert.Equal(t, 0, s.Len())

	s.AddItem(ctx, product(1, 100), 1)
	s.UpdateQuantity(ctx, 1, 4)
	assert.Equal(t, 4, s.Lines()[0].Quantity)
	assert.Equal(t, 2, storage.saves)
}

func TestLinesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := openEmpty(t)
	s.AddItem(ctx, product(1, 100), 1)

	lines := s.Lines()
	lines[0].Quantity = 50
	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestSessionsSerializeSameSession(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	sessions := cart.NewSessions(storage, logger.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.With(ctx, "s1", func(s *cart.Store) error {
				s.AddItem(ctx, product(1, 100), 1)
				return nil
			})
		}()
	}
	wg.Wait()

	err := sessions.With(ctx, "s1", func(s *cart.Store) error {
		assert.Equal(t, cart.SlotName("s1"), s.Slot())
		require.Equal(t, 1, s.Len())
		assert.Equal(t, 50, s.Lines()[0].Quantity)
		return nil
	})
	require.NoError(t, err)

	err = sessions.With(ctx, "s2", func(s *cart.Store) error {
		assert.Equal(t, 0, s.Len())
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
}

func TestSessionsReopenFromSlotEachCall(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	sessions := cart.NewSessions(storage, logger.NewNop())

	require.NoError(t, sessions.With(ctx, "s1", func(s *cart.Store) error {
		s.AddItem(ctx, product(1, 100), 2)
		return nil
	}))

	// Another process replaces the slot between requests.
	data, err := cart.Encode([]cart.Line{{Product: product(9, 500), Quantity: 4}})
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, cart.SlotName("s1"), data))

	require.NoError(t, sessions.With(ctx, "s1", func(s *cart.Store) error {
		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, catalog.ProductID(9), lines[0].Product.ID)
		assert.Equal(t, 4, lines[0].Quantity)
		return nil
	}))
}
