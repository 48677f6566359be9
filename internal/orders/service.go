package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/inventory"
	"github.com/sajanbk/meatshop-golang/internal/models"
)

// CatalogReader is the read-only slice of the catalog the ledger needs at
// checkout: current price and availability for the snapshot step.
type CatalogReader interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// OrderStore persists orders and their audit log.
type OrderStore interface {
	// Insert persists the order with its items and fills in o.ID. It returns
	// ErrDuplicateOrderNumber when the generated order number already exists.
	Insert(ctx context.Context, o *models.Order) error

	// GetByID loads an order with its items.
	GetByID(ctx context.Context, id int64) (*models.Order, error)

	// GetByNumber loads an order by its order number, with items.
	GetByNumber(ctx context.Context, number string) (*models.Order, error)

	// UpdateStatus moves the order from -> to in one guarded write. When
	// payment is non-nil the payment status is set in the same update.
	// Returns ErrNotFound when the guard misses (the order moved underneath).
	UpdateStatus(ctx context.Context, orderID int64, from, to models.OrderStatus, payment *models.PaymentStatus) error

	// SetPaymentStatus records a payment outcome (gateway callback).
	SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus, transactionID *string) error

	// AppendAudit records one entry in the order audit log.
	AppendAudit(ctx context.Context, e *models.OrderAuditEntry) error
}

// EventPublisher receives order lifecycle events. Publishing is best effort;
// a down broker never fails an order.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
}

// Event types emitted by the ledger.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
)

// Service is the order ledger: it creates orders from carts and runs the
// status state machine. It owns the Order/OrderItem lifecycle exclusively.
type Service struct {
	Catalog CatalogReader
	Stock   *inventory.Reconciler
	Store   OrderStore
	Events  EventPublisher

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewService(cat CatalogReader, stock *inventory.Reconciler, store OrderStore, events EventPublisher) *Service {
	return &Service{
		Catalog: cat,
		Stock:   stock,
		Store:   store,
		Events:  events,
		Now:     time.Now,
	}
}

// PlaceOrderInput is everything checkout hands the ledger. The cart is a
// value object loaded by the web layer; the ledger never reads session state.
type PlaceOrderInput struct {
	UserID              int64
	Cart                models.Cart
	DeliveryAddress     string
	DeliveryPhone       string
	SpecialInstructions string
	PaymentMethod       models.PaymentMethod

	// AreaCharge is the delivery area's override for small orders, when the
	// customer picked a configured area.
	AreaCharge *float64
}

// PlaceOrder validates the cart, snapshots current prices, reserves stock and
// persists the order. On any failure after stock was deducted, the
// reservation is released before returning, so no partial state survives.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if in.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, &ValidationError{Field: "deliveryAddress", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.DeliveryPhone) == "" {
		return nil, &ValidationError{Field: "deliveryPhone", Reason: "must not be empty"}
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return nil, &ValidationError{Field: "paymentMethod", Reason: fmt.Sprintf("unknown method %q", in.PaymentMethod)}
	}

	// Snapshot current catalog prices into order items. These line prices are
	// frozen here; the catalog can change freely afterwards.
	items := make([]models.OrderItem, 0, len(in.Cart.Items))
	reserve := make([]inventory.Item, 0, len(in.Cart.Items))
	for _, ci := range in.Cart.Items {
		if ci.QuantityKg <= 0 {
			return nil, &ValidationError{Field: "cart", Reason: fmt.Sprintf("non-positive quantity for product %d", ci.ProductID)}
		}

		p, err := s.Catalog.GetProduct(ctx, ci.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ValidationError{Field: "cart", Reason: fmt.Sprintf("product %d does not exist", ci.ProductID)}
			}
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		if !p.Orderable() {
			return nil, &ValidationError{Field: "cart", Reason: fmt.Sprintf("%s is currently unavailable", p.Name)}
		}
		if ci.QuantityKg < p.MinOrderKg {
			return nil, &ValidationError{Field: "cart", Reason: fmt.Sprintf("minimum order for %s is %.1f kg", p.Name, p.MinOrderKg)}
		}

		items = append(items, models.OrderItem{
			ProductID:  ci.ProductID,
			QuantityKg: ci.QuantityKg,
			PricePerKg: p.PricePerKg,
			TotalPrice: ci.QuantityKg * p.PricePerKg,
		})
		reserve = append(reserve, inventory.Item{ProductID: ci.ProductID, QuantityKg: ci.QuantityKg})
	}

	subtotal := Subtotal(items)
	deliveryCharge := DeliveryCharge(subtotal, in.AreaCharge)

	// Reserve before persisting anything: the reconciler either deducts every
	// line or leaves stock untouched.
	if err := s.Stock.Reserve(ctx, reserve); err != nil {
		return nil, err
	}

	now := s.Now()
	order := &models.Order{
		UserID:              in.UserID,
		Status:              models.OrderStatusPending,
		PaymentMethod:       in.PaymentMethod,
		PaymentStatus:       models.PaymentStatusPending,
		Subtotal:            subtotal,
		DeliveryCharge:      deliveryCharge,
		TotalAmount:         subtotal + deliveryCharge,
		DeliveryAddress:     in.DeliveryAddress,
		DeliveryPhone:       in.DeliveryPhone,
		CreatedAt:           now,
		UpdatedAt:           now,
		Items:               items,
	}
	if in.SpecialInstructions != "" {
		order.SpecialInstructions = &in.SpecialInstructions
	}

	// Allocate an order number, regenerating the suffix on the rare
	// persisted-uniqueness collision.
	var insertErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order.OrderNumber = NewOrderNumber(now)
		insertErr = s.Store.Insert(ctx, order)
		if insertErr == nil {
			break
		}
		if !errors.Is(insertErr, ErrDuplicateOrderNumber) {
			break
		}
	}
	if insertErr != nil {
		// The reservation already committed; hand the stock back before
		// reporting failure so the state reads as "never attempted".
		if relErr := s.Stock.Release(ctx, reserve); relErr != nil {
			log.Printf("order %s: failed to release stock after insert failure: %v", order.OrderNumber, relErr)
		}
		if errors.Is(insertErr, ErrDuplicateOrderNumber) {
			return nil, ErrOrderNumberAllocation
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, insertErr)
	}

	s.publish(ctx, EventOrderPlaced, order.OrderNumber, order)
	return order, nil
}

// Transition moves an order through the status machine. Cancelling a
// pending/confirmed order releases its stock; delivering a COD order promotes
// the payment status to paid in the same update, with a system audit entry.
func (s *Service) Transition(ctx context.Context, orderID int64, to models.OrderStatus, actor string) (*models.Order, error) {
	order, err := s.Store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	from := order.Status
	if !CanTransition(from, to) {
		return nil, &InvalidTransitionError{From: from, To: to}
	}

	// COD orders are settled at the door: flip the payment to paid as part of
	// the same delivered update.
	var payment *models.PaymentStatus
	codPromoted := false
	if to == models.OrderStatusDelivered &&
		order.PaymentMethod == models.PaymentCOD &&
		order.PaymentStatus != models.PaymentStatusPaid {
		paid := models.PaymentStatusPaid
		payment = &paid
		codPromoted = true
	}

	if err := s.Store.UpdateStatus(ctx, orderID, from, to, payment); err != nil {
		if errors.Is(err, ErrNotFound) {
			// The guard missed: someone else moved the order first.
			return nil, &InvalidTransitionError{From: from, To: to}
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	if err := s.Store.AppendAudit(ctx, &models.OrderAuditEntry{
		OrderID:    orderID,
		Actor:      actor,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  s.Now(),
	}); err != nil {
		log.Printf("order %d: failed to append audit entry: %v", orderID, err)
	}
	if codPromoted {
		reason := "cod_delivered"
		if err := s.Store.AppendAudit(ctx, &models.OrderAuditEntry{
			OrderID:    orderID,
			Actor:      "system",
			FromStatus: to,
			ToStatus:   to,
			Reason:     &reason,
			CreatedAt:  s.Now(),
		}); err != nil {
			log.Printf("order %d: failed to append cod audit entry: %v", orderID, err)
		}
	}

	// Cancellation returns every line to stock.
	if to == models.OrderStatusCancelled {
		release := make([]inventory.Item, 0, len(order.Items))
		for _, it := range order.Items {
			release = append(release, inventory.Item{ProductID: it.ProductID, QuantityKg: it.QuantityKg})
		}
		if err := s.Stock.Release(ctx, release); err != nil {
			// The cancel itself committed; stock restoration failing is an
			// operational problem, not a caller error.
			log.Printf("order %d: failed to restore stock on cancel: %v", orderID, err)
		}
	}

	order.Status = to
	if payment != nil {
		order.PaymentStatus = *payment
	}
	order.UpdatedAt = s.Now()

	if to == models.OrderStatusCancelled {
		s.publish(ctx, EventOrderCancelled, order.OrderNumber, order)
	} else {
		s.publish(ctx, EventOrderStatusChanged, order.OrderNumber, order)
	}
	return order, nil
}

// RecordPayment applies a gateway callback outcome to an order, keyed by
// order number. The gateway wire protocol itself stays outside the core.
func (s *Service) RecordPayment(ctx context.Context, orderNumber string, status models.PaymentStatus, transactionID string) (*models.Order, error) {
	if status != models.PaymentStatusPaid && status != models.PaymentStatusFailed {
		return nil, &ValidationError{Field: "paymentStatus", Reason: fmt.Sprintf("unexpected callback status %q", status)}
	}

	order, err := s.Store.GetByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	var txnID *string
	if transactionID != "" {
		txnID = &transactionID
	}
	if err := s.Store.SetPaymentStatus(ctx, order.ID, status, txnID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}

	order.PaymentStatus = status
	order.TransactionID = txnID
	return order, nil
}

func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, eventType, key, payload)
}
