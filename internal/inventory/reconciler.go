package inventory

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound means a referenced product row does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrTransient marks backing-store failures; after the reconciler returns
	// it, the conceptual state is as if the reservation was never attempted.
	ErrTransient = errors.New("transient stock store error")
)

// Item is one (product, quantity) pair of a reservation. Quantities are in
// kilograms and must be positive.
type Item struct {
	ProductID  int64
	QuantityKg float64
}

// InsufficientStockError names the first product that could not cover its
// requested quantity. Recoverable: checkout surfaces it to the user as a
// business condition, not a fault.
type InsufficientStockError struct {
	ProductID   int64
	RequestedKg float64
	AvailableKg float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %.2f kg, available %.2f kg",
		e.ProductID, e.RequestedKg, e.AvailableKg)
}

// ShortfallKg is how many kilograms were missing.
func (e *InsufficientStockError) ShortfallKg() float64 {
	return e.RequestedKg - e.AvailableKg
}

// StockStore is the per-product atomic surface the reconciler runs on. Each
// TryDeduct must be a single compare-and-subtract (guarded by
// stock >= quantity at write time) so concurrent checkouts on the same
// product can never drive stock negative.
type StockStore interface {
	// TryDeduct atomically subtracts qtyKg where stock_kg >= qtyKg.
	// When the guard fails it returns ok=false and the stock that was seen.
	TryDeduct(ctx context.Context, productID int64, qtyKg float64) (ok bool, availableKg float64, err error)

	// AddBack re-adds a previously deducted quantity.
	AddBack(ctx context.Context, productID int64, qtyKg float64) error
}

// Reconciler owns every mutation of product stock. Nothing else in the
// application writes stock_kg.
type Reconciler struct {
	Store StockStore
}

func NewReconciler(store StockStore) *Reconciler {
	return &Reconciler{Store: store}
}

// Reserve validates and deducts stock for all items as one logical unit.
// If any item fails, every deduction already made is compensated before
// returning, so the caller never observes a partial reservation.
func (r *Reconciler) Reserve(ctx context.Context, items []Item) error {
	deducted := make([]Item, 0, len(items))

	for _, it := range items {
		if it.QuantityKg <= 0 {
			r.compensate(ctx, deducted)
			return fmt.Errorf("invalid quantity %.2f for product %d", it.QuantityKg, it.ProductID)
		}

		ok, available, err := r.Store.TryDeduct(ctx, it.ProductID, it.QuantityKg)
		if err != nil {
			r.compensate(ctx, deducted)
			if errors.Is(err, ErrProductNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if !ok {
			r.compensate(ctx, deducted)
			return &InsufficientStockError{
				ProductID:   it.ProductID,
				RequestedKg: it.QuantityKg,
				AvailableKg: available,
			}
		}
		deducted = append(deducted, it)
	}

	return nil
}

// Release returns every quantity in items back to stock. Used when a batch
// fails mid-way and when a pending/confirmed order is cancelled.
func (r *Reconciler) Release(ctx context.Context, items []Item) error {
	for _, it := range items {
		if err := r.Store.AddBack(ctx, it.ProductID, it.QuantityKg); err != nil {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
	}
	return nil
}

// compensate rolls back the already-deducted prefix of a failed batch.
func (r *Reconciler) compensate(ctx context.Context, deducted []Item) {
	for _, it := range deducted {
		// Best effort; a failed add-back here means the store itself is down
		// and the whole operation is already being reported as failed.
		_ = r.Store.AddBack(ctx, it.ProductID, it.QuantityKg)
	}
}
