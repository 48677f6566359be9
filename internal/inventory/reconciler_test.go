package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStockStore is an in-memory StockStore with the same per-product
// compare-and-subtract guarantee the MySQL store gives.
type memStockStore struct {
	mu    sync.Mutex
	stock map[int64]float64

	failDeduct  bool
	failAddBack bool
}

func newMemStockStore(stock map[int64]float64) *memStockStore {
	return &memStockStore{stock: stock}
}

func (m *memStockStore) TryDeduct(_ context.Context, productID int64, qtyKg float64) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDeduct {
		return false, 0, errors.New("store down")
	}
	available, ok := m.stock[productID]
	if !ok {
		return false, 0, ErrProductNotFound
	}
	if available < qtyKg {
		return false, available, nil
	}
	m.stock[productID] = available - qtyKg
	return true, available, nil
}

func (m *memStockStore) AddBack(_ context.Context, productID int64, qtyKg float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAddBack {
		return errors.New("store down")
	}
	m.stock[productID] += qtyKg
	return nil
}

func (m *memStockStore) level(productID int64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID]
}

func TestReserveDeductsEveryLine(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 10, 2: 4})
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{
		{ProductID: 1, QuantityKg: 2.5},
		{ProductID: 2, QuantityKg: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 7.5, store.level(1))
	assert.Equal(t, 0.0, store.level(2))
}

func TestReserveInsufficientStock(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 3})
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{{ProductID: 1, QuantityKg: 5}})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, 5.0, stockErr.RequestedKg)
	assert.Equal(t, 3.0, stockErr.AvailableKg)
	assert.Equal(t, 2.0, stockErr.ShortfallKg())

	// Nothing was deducted.
	assert.Equal(t, 3.0, store.level(1))
}

func TestReserveCompensatesPartialBatch(t *testing.T) {
	// First two lines fit, third does not: the first two must be rolled back.
	store := newMemStockStore(map[int64]float64{1: 10, 2: 10, 3: 1})
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{
		{ProductID: 1, QuantityKg: 4},
		{ProductID: 2, QuantityKg: 4},
		{ProductID: 3, QuantityKg: 2},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.ProductID)

	assert.Equal(t, 10.0, store.level(1))
	assert.Equal(t, 10.0, store.level(2))
	assert.Equal(t, 1.0, store.level(3))
}

func TestReserveUnknownProduct(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 10})
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{
		{ProductID: 1, QuantityKg: 4},
		{ProductID: 99, QuantityKg: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)

	// The deducted prefix came back.
	assert.Equal(t, 10.0, store.level(1))
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 10})
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{{ProductID: 1, QuantityKg: 0}})
	require.Error(t, err)
	assert.Equal(t, 10.0, store.level(1))
}

func TestReserveStoreFailureIsTransient(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 10})
	store.failDeduct = true
	r := NewReconciler(store)

	err := r.Reserve(context.Background(), []Item{{ProductID: 1, QuantityKg: 1}})
	require.ErrorIs(t, err, ErrTransient)
}

func TestReleaseRestoresStock(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 2, 2: 0})
	r := NewReconciler(store)

	err := r.Release(context.Background(), []Item{
		{ProductID: 1, QuantityKg: 3},
		{ProductID: 2, QuantityKg: 1.5},
	})
	require.NoError(t, err)

	assert.Equal(t, 5.0, store.level(1))
	assert.Equal(t, 1.5, store.level(2))
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	store := newMemStockStore(map[int64]float64{1: 10})
	r := NewReconciler(store)

	const workers = 25
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Reserve(context.Background(), []Item{{ProductID: 1, QuantityKg: 1}})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
	}

	// Exactly the available 10 kg was handed out, never more.
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0.0, store.level(1))
}
