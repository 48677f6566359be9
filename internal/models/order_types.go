package models

import "time"

type OrderStatus string
type PaymentStatus string
type PaymentMethod string

const (
	// Order statuses. Transitions between them are enforced by the orders package.
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"

	// Payment statuses
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	// Payment methods accepted at checkout
	PaymentCOD           PaymentMethod = "cod"
	PaymentESewa         PaymentMethod = "esewa"
	PaymentKhalti        PaymentMethod = "khalti"
	PaymentFonePay       PaymentMethod = "fonepay"
	PaymentMobileBanking PaymentMethod = "mobile_banking"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
)

// ValidPaymentMethod reports whether the checkout form sent a method we accept.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCOD, PaymentESewa, PaymentKhalti, PaymentFonePay, PaymentMobileBanking, PaymentBankTransfer:
		return true
	}
	return false
}

// Order is the model for the 'orders' table.
type Order struct {
	ID                  int64         `json:"id" db:"id"`
	OrderNumber         string        `json:"orderNumber" db:"order_number"`
	UserID              int64         `json:"userId" db:"user_id"`
	Status              OrderStatus   `json:"status" db:"status"`
	PaymentMethod       PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentStatus       PaymentStatus `json:"paymentStatus" db:"payment_status"`
	TransactionID       *string       `json:"transactionId,omitempty" db:"transaction_id"`
	Subtotal            float64       `json:"subtotal" db:"subtotal"`
	DeliveryCharge      float64       `json:"deliveryCharge" db:"delivery_charge"`
	TotalAmount         float64       `json:"totalAmount" db:"total_amount"`
	DeliveryAddress     string        `json:"deliveryAddress" db:"delivery_address"`
	DeliveryPhone       string        `json:"deliveryPhone" db:"delivery_phone"`
	SpecialInstructions *string       `json:"specialInstructions,omitempty" db:"special_instructions"`
	CreatedAt           time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time     `json:"updatedAt" db:"updated_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// PricePerKg is the snapshot taken at purchase time; later catalog price
// changes never touch historical orders.
type OrderItem struct {
	ID         int64   `json:"id" db:"id"`
	OrderID    int64   `json:"orderId" db:"order_id"`
	ProductID  int64   `json:"productId" db:"product_id"`
	QuantityKg float64 `json:"quantityKg" db:"quantity_kg"`
	PricePerKg float64 `json:"pricePerKg" db:"price_per_kg"`
	TotalPrice float64 `json:"totalPrice" db:"total_price"`

	ProductName string `json:"productName,omitempty" db:"-"`
}

// StatusNepali returns the bilingual display label for an order status.
func (o *Order) StatusNepali() string {
	labels := map[OrderStatus]string{
		OrderStatusPending:        "पेन्डिङ / Pending",
		OrderStatusConfirmed:      "पुष्टि भयो / Confirmed",
		OrderStatusPreparing:      "तयारी हुँदैछ / Preparing",
		OrderStatusOutForDelivery: "डेलिभरीमा / Out for Delivery",
		OrderStatusDelivered:      "डेलिभर भयो / Delivered",
		OrderStatusCancelled:      "रद्द भयो / Cancelled",
	}
	if l, ok := labels[o.Status]; ok {
		return l
	}
	return string(o.Status)
}

// OrderAuditEntry is the model for the 'order_audit_log' table. Every status
// change is recorded with who did it, including automatic system transitions.
type OrderAuditEntry struct {
	ID         int64       `json:"id" db:"id"`
	OrderID    int64       `json:"orderId" db:"order_id"`
	Actor      string      `json:"actor" db:"actor"`
	FromStatus OrderStatus `json:"fromStatus" db:"from_status"`
	ToStatus   OrderStatus `json:"toStatus" db:"to_status"`
	Reason     *string     `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}
