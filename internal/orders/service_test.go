package orders

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/inventory"
	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// --- In-memory fakes ---
//

type fakeCatalog struct {
	products map[int64]models.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &p, nil
}

type memStock struct {
	mu    sync.Mutex
	stock map[int64]float64
}

func (m *memStock) TryDeduct(_ context.Context, productID int64, qtyKg float64) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	available, ok := m.stock[productID]
	if !ok {
		return false, 0, inventory.ErrProductNotFound
	}
	if available < qtyKg {
		return false, available, nil
	}
	m.stock[productID] = available - qtyKg
	return true, available, nil
}

func (m *memStock) AddBack(_ context.Context, productID int64, qtyKg float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] += qtyKg
	return nil
}

type fakeOrderStore struct {
	nextID int64
	orders map[int64]*models.Order
	audit  []models.OrderAuditEntry

	// insertDupes makes the first N inserts fail with ErrDuplicateOrderNumber.
	insertDupes int
	inserts     int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, orders: map[int64]*models.Order{}}
}

func (f *fakeOrderStore) Insert(_ context.Context, o *models.Order) error {
	f.inserts++
	if f.insertDupes > 0 {
		f.insertDupes--
		return ErrDuplicateOrderNumber
	}
	o.ID = f.nextID
	f.nextID++
	cp := *o
	f.orders[cp.ID] = &cp
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderStore) GetByNumber(_ context.Context, number string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, orderID int64, from, to models.OrderStatus, payment *models.PaymentStatus) error {
	o, ok := f.orders[orderID]
	if !ok || o.Status != from {
		return ErrNotFound
	}
	o.Status = to
	if payment != nil {
		o.PaymentStatus = *payment
	}
	return nil
}

func (f *fakeOrderStore) SetPaymentStatus(_ context.Context, orderID int64, status models.PaymentStatus, transactionID *string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = status
	if transactionID != nil {
		o.TransactionID = transactionID
	}
	return nil
}

func (f *fakeOrderStore) AppendAudit(_ context.Context, e *models.OrderAuditEntry) error {
	f.audit = append(f.audit, *e)
	return nil
}

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) Publish(_ context.Context, eventType, _ string, _ any) {
	f.published = append(f.published, eventType)
}

func testService(products map[int64]models.Product, stock map[int64]float64) (*Service, *fakeOrderStore, *memStock, *fakeEvents) {
	store := newFakeOrderStore()
	mem := &memStock{stock: stock}
	events := &fakeEvents{}
	svc := NewService(&fakeCatalog{products: products}, inventory.NewReconciler(mem), store, events)
	svc.Now = func() time.Time { return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC) }
	return svc, store, mem, events
}

func twoProducts() map[int64]models.Product {
	return map[int64]models.Product{
		1: {ID: 1, Name: "Pork Belly", PricePerKg: 650, StockKg: 20, MinOrderKg: 0.5, IsAvailable: true},
		2: {ID: 2, Name: "Goat Leg", PricePerKg: 1200, StockKg: 8, MinOrderKg: 1, IsAvailable: true},
	}
}

func cartOf(items ...models.CartItem) models.Cart {
	return models.Cart{Items: items}
}

func placeInput(cart models.Cart) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:          7,
		Cart:            cart,
		DeliveryAddress: "Baneshwor, Kathmandu",
		DeliveryPhone:   "9841000000",
		PaymentMethod:   models.PaymentCOD,
	}
}

//
// --- PlaceOrder ---
//

func TestPlaceOrderHappyPath(t *testing.T) {
	svc, store, mem, events := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	in := placeInput(cartOf(
		models.CartItem{ProductID: 1, QuantityKg: 2},
		models.CartItem{ProductID: 2, QuantityKg: 1},
	))
	order, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "MO20260823120000"))
	assert.Len(t, order.OrderNumber, 22)

	// Prices are the catalog snapshot, totals follow from it.
	assert.Equal(t, 650.0, order.Items[0].PricePerKg)
	assert.Equal(t, 2500.0, order.Subtotal)
	assert.Equal(t, 0.0, order.DeliveryCharge)
	assert.Equal(t, 2500.0, order.TotalAmount)

	// Stock was deducted and the order persisted.
	assert.Equal(t, 18.0, mem.stock[1])
	assert.Equal(t, 7.0, mem.stock[2])
	assert.Len(t, store.orders, 1)

	assert.Equal(t, []string{EventOrderPlaced}, events.published)
}

func TestPlaceOrderAppliesDeliveryTiers(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	// 1 kg pork belly = 650, below the reduced tier: flat default applies.
	order, err := svc.PlaceOrder(context.Background(),
		placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1})))
	require.NoError(t, err)
	assert.Equal(t, 50.0, order.DeliveryCharge)
	assert.Equal(t, 700.0, order.TotalAmount)

	// Same cart with an area override.
	in := placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))
	area := 100.0
	in.AreaCharge = &area
	order, err = svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 100.0, order.DeliveryCharge)

	// 2 kg = 1300, reduced tier beats the area override.
	in = placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 2}))
	in.AreaCharge = &area
	order, err = svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 25.0, order.DeliveryCharge)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	_, err := svc.PlaceOrder(context.Background(), placeInput(cartOf()))
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.PlaceOrder(context.Background(),
		placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 0})))
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, mem, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	cart := cartOf(models.CartItem{ProductID: 1, QuantityKg: 2})

	var validationErr *ValidationError

	in := placeInput(cart)
	in.DeliveryAddress = "   "
	_, err := svc.PlaceOrder(context.Background(), in)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "deliveryAddress", validationErr.Field)

	in = placeInput(cart)
	in.DeliveryPhone = ""
	_, err = svc.PlaceOrder(context.Background(), in)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "deliveryPhone", validationErr.Field)

	in = placeInput(cart)
	in.PaymentMethod = "paypal"
	_, err = svc.PlaceOrder(context.Background(), in)
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "paymentMethod", validationErr.Field)

	// Below the product's minimum order quantity.
	in = placeInput(cartOf(models.CartItem{ProductID: 2, QuantityKg: 0.5}))
	_, err = svc.PlaceOrder(context.Background(), in)
	require.ErrorAs(t, err, &validationErr)

	// Unknown product.
	in = placeInput(cartOf(models.CartItem{ProductID: 99, QuantityKg: 1}))
	_, err = svc.PlaceOrder(context.Background(), in)
	require.ErrorAs(t, err, &validationErr)

	// No validation failure ever touched stock.
	assert.Equal(t, 20.0, mem.stock[1])
	assert.Equal(t, 8.0, mem.stock[2])
}

func TestPlaceOrderUnavailableProduct(t *testing.T) {
	products := twoProducts()
	p := products[1]
	p.IsAvailable = false
	products[1] = p

	svc, _, _, _ := testService(products, map[int64]float64{1: 20, 2: 8})

	var validationErr *ValidationError
	_, err := svc.PlaceOrder(context.Background(),
		placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1})))
	require.ErrorAs(t, err, &validationErr)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, store, mem, events := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	_, err := svc.PlaceOrder(context.Background(), placeInput(cartOf(
		models.CartItem{ProductID: 1, QuantityKg: 2},
		models.CartItem{ProductID: 2, QuantityKg: 9},
	)))

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 1.0, stockErr.ShortfallKg())

	// The pork deduction was compensated; nothing persisted or published.
	assert.Equal(t, 20.0, mem.stock[1])
	assert.Equal(t, 8.0, mem.stock[2])
	assert.Empty(t, store.orders)
	assert.Empty(t, events.published)
}

func TestPlaceOrderRetriesDuplicateNumber(t *testing.T) {
	svc, store, mem, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	store.insertDupes = 2

	order, err := svc.PlaceOrder(context.Background(),
		placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1})))
	require.NoError(t, err)
	assert.Equal(t, 3, store.inserts)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, 19.0, mem.stock[1])
}

func TestPlaceOrderGivesUpAfterThreeDuplicates(t *testing.T) {
	svc, store, mem, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	store.insertDupes = 3

	_, err := svc.PlaceOrder(context.Background(),
		placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1})))
	require.ErrorIs(t, err, ErrOrderNumberAllocation)
	assert.Equal(t, 3, store.inserts)

	// The reservation was handed back.
	assert.Equal(t, 20.0, mem.stock[1])
	assert.Empty(t, store.orders)
}

//
// --- Transition ---
//

func placed(t *testing.T, svc *Service, cart models.Cart) *models.Order {
	t.Helper()
	order, err := svc.PlaceOrder(context.Background(), placeInput(cart))
	require.NoError(t, err)
	return order
}

func TestTransitionConfirm(t *testing.T) {
	svc, store, _, events := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	order := placed(t, svc, cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))

	updated, err := svc.Transition(context.Background(), order.ID, models.OrderStatusConfirmed, "staff:3")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)

	require.Len(t, store.audit, 1)
	assert.Equal(t, "staff:3", store.audit[0].Actor)
	assert.Equal(t, models.OrderStatusPending, store.audit[0].FromStatus)
	assert.Equal(t, models.OrderStatusConfirmed, store.audit[0].ToStatus)

	assert.Equal(t, []string{EventOrderPlaced, EventOrderStatusChanged}, events.published)
}

func TestTransitionRejected(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	order := placed(t, svc, cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))

	var transitionErr *InvalidTransitionError
	_, err := svc.Transition(context.Background(), order.ID, models.OrderStatusDelivered, "staff:3")
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.OrderStatusPending, transitionErr.From)
	assert.Equal(t, models.OrderStatusDelivered, transitionErr.To)
}

func TestTransitionUnknownOrder(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	_, err := svc.Transition(context.Background(), 404, models.OrderStatusConfirmed, "staff:3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionCancelReleasesStock(t *testing.T) {
	svc, store, mem, events := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	order := placed(t, svc, cartOf(
		models.CartItem{ProductID: 1, QuantityKg: 2},
		models.CartItem{ProductID: 2, QuantityKg: 1},
	))
	assert.Equal(t, 18.0, mem.stock[1])

	updated, err := svc.Transition(context.Background(), order.ID, models.OrderStatusCancelled, "customer:7")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, updated.Status)

	// Every line came back on the shelf.
	assert.Equal(t, 20.0, mem.stock[1])
	assert.Equal(t, 8.0, mem.stock[2])

	assert.Equal(t, models.OrderStatusCancelled, store.orders[order.ID].Status)
	assert.Contains(t, events.published, EventOrderCancelled)
}

func TestTransitionCodDeliveredPromotesPayment(t *testing.T) {
	svc, store, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	order := placed(t, svc, cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed, models.OrderStatusPreparing, models.OrderStatusOutForDelivery,
	} {
		_, err := svc.Transition(context.Background(), order.ID, next, "staff:3")
		require.NoError(t, err)
	}

	updated, err := svc.Transition(context.Background(), order.ID, models.OrderStatusDelivered, "staff:3")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentStatus)

	// The automatic settlement leaves its own system audit entry.
	last := store.audit[len(store.audit)-1]
	assert.Equal(t, "system", last.Actor)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "cod_delivered", *last.Reason)
}

func TestTransitionDigitalDeliveredKeepsPaymentStatus(t *testing.T) {
	svc, store, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	in := placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))
	in.PaymentMethod = models.PaymentESewa
	order, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)

	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed, models.OrderStatusPreparing,
		models.OrderStatusOutForDelivery, models.OrderStatusDelivered,
	} {
		_, err := svc.Transition(context.Background(), order.ID, next, "staff:3")
		require.NoError(t, err)
	}

	// Online payments only move via the gateway callback.
	assert.Equal(t, models.PaymentStatusPending, store.orders[order.ID].PaymentStatus)
}

func TestTransitionGuardMissReportsConflict(t *testing.T) {
	svc, store, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})
	order := placed(t, svc, cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))

	// Simulate a concurrent transition between the read and the guarded write.
	store.orders[order.ID].Status = models.OrderStatusCancelled

	var transitionErr *InvalidTransitionError
	_, err := svc.Transition(context.Background(), order.ID, models.OrderStatusConfirmed, "staff:3")
	require.ErrorAs(t, err, &transitionErr)
}

//
// --- RecordPayment ---
//

func TestRecordPayment(t *testing.T) {
	svc, store, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	in := placeInput(cartOf(models.CartItem{ProductID: 1, QuantityKg: 1}))
	in.PaymentMethod = models.PaymentKhalti
	order, err := svc.PlaceOrder(context.Background(), in)
	require.NoError(t, err)

	updated, err := svc.RecordPayment(context.Background(), order.OrderNumber, models.PaymentStatusPaid, "TXN-123")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.TransactionID)
	assert.Equal(t, "TXN-123", *updated.TransactionID)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentStatus)
}

func TestRecordPaymentRejectsUnexpectedStatus(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	var validationErr *ValidationError
	_, err := svc.RecordPayment(context.Background(), "MO123", models.PaymentStatusPending, "")
	require.ErrorAs(t, err, &validationErr)
}

func TestRecordPaymentUnknownOrder(t *testing.T) {
	svc, _, _, _ := testService(twoProducts(), map[int64]float64{1: 20, 2: 8})

	_, err := svc.RecordPayment(context.Background(), "MO-missing", models.PaymentStatusPaid, "TXN-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
