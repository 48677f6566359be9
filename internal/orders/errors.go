package orders

import (
	"errors"
	"fmt"

	"github.com/sajanbk/meatshop-golang/internal/models"
)

var (
	// ErrNotFound means the order id does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("order not found")

	// ErrEmptyCart is returned by PlaceOrder before any mutation happens.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrOrderNumberAllocation is fatal: every retry hit a persisted uniqueness
	// violation, which should be astronomically rare.
	ErrOrderNumberAllocation = errors.New("could not allocate order number")

	// ErrDuplicateOrderNumber is the store-level signal that triggers a retry
	// with a fresh suffix. It never escapes PlaceOrder.
	ErrDuplicateOrderNumber = errors.New("duplicate order number")

	// ErrTransient marks backing-store failures the caller may retry with
	// backoff. No partial order state is left behind when it is returned.
	ErrTransient = errors.New("transient storage error")
)

// ValidationError rejects malformed input before any mutation. Fully
// recoverable by the caller correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError is returned when a requested status change is not in
// the transition table. The order is left unchanged.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s", e.From, e.To)
}
