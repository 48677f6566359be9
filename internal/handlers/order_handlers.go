package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/auth"
	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/inventory"
	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/sajanbk/meatshop-golang/internal/orders"
)

//
// --- Checkout & Customer Order Handlers ---
//

// CheckoutInput defines the JSON for POST /v1/checkout.
type CheckoutInput struct {
	DeliveryAddress     string `json:"deliveryAddress" binding:"required"`
	DeliveryPhone       string `json:"deliveryPhone" binding:"required"`
	PaymentMethod       string `json:"paymentMethod" binding:"required"`
	DeliveryAreaID      int64  `json:"deliveryAreaId"`
	SpecialInstructions string `json:"specialInstructions"`
}

// Checkout is the handler for POST /v1/checkout
// It loads the session cart, hands the ledger a cart value object, and clears
// the session cart only after the order persisted.
func (h *Handlers) Checkout(c *gin.Context) {
	userID := c.GetInt64("userID")
	ctx := c.Request.Context()

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.Carts.Get(ctx, userID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load cart, please retry"})
		return
	}

	// Optional delivery-area override for small orders.
	var areaCharge *float64
	if input.DeliveryAreaID != 0 {
		area, err := h.Catalog.GetDeliveryArea(ctx, input.DeliveryAreaID)
		if err != nil {
			if err == catalog.ErrNotFound {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delivery area"})
				return
			}
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to look up delivery area"})
			return
		}
		areaCharge = &area.DeliveryCharge
	}

	order, err := h.Ledger.PlaceOrder(ctx, orders.PlaceOrderInput{
		UserID:              userID,
		Cart:                cart,
		DeliveryAddress:     input.DeliveryAddress,
		DeliveryPhone:       input.DeliveryPhone,
		SpecialInstructions: input.SpecialInstructions,
		PaymentMethod:       models.PaymentMethod(input.PaymentMethod),
		AreaCharge:          areaCharge,
	})
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	if err := h.Carts.Clear(ctx, userID); err != nil {
		// The order exists either way; a stale cart is just cosmetic.
		c.JSON(http.StatusCreated, gin.H{"order": order, "warning": "Cart could not be cleared"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "अर्डर सफल भयो / Order placed",
		"order":   order,
	})
}

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := c.GetInt64("userID")

	list, err := h.Orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	userID := c.GetInt64("userID")
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// Customers only see their own orders; staff may look at any.
	if order.UserID != userID && !auth.HasStaffAccess(c.GetString("userRole")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":         order,
		"statusDisplay": order.StatusNepali(),
	})
}

// CancelMyOrder is the handler for POST /v1/orders/:id/cancel
// Customers may cancel their own orders while the state machine still allows
// it (pending/confirmed). Stock is restored by the ledger.
func (h *Handlers) CancelMyOrder(c *gin.Context) {
	userID := c.GetInt64("userID")
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	updated, err := h.Ledger.Transition(c.Request.Context(), orderID, models.OrderStatusCancelled, "customer:"+strconv.FormatInt(userID, 10))
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "अर्डर रद्द भयो / Order cancelled",
		"order":   updated,
	})
}

//
// --- Staff Order Handlers ---
//

// UpdateOrderStatusInput defines the JSON for a status transition.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PATCH /v1/staff/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := c.GetString("userRole") + ":" + strconv.FormatInt(c.GetInt64("userID"), 10)
	order, err := h.Ledger.Transition(c.Request.Context(), orderID, models.OrderStatus(input.Status), actor)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// ListOrders is the handler for GET /v1/staff/orders?status=...
func (h *Handlers) ListOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))

	list, err := h.Orders.ListAll(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// writeOrderError maps the ledger's error taxonomy onto HTTP responses.
func (h *Handlers) writeOrderError(c *gin.Context, err error) {
	var stockErr *inventory.InsufficientStockError
	var validationErr *orders.ValidationError
	var transitionErr *orders.InvalidTransitionError

	switch {
	case errors.Is(err, orders.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "कार्ट खाली छ / Your cart is empty"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":       "पर्याप्त स्टक छैन / Not enough stock",
			"productId":   stockErr.ProductID,
			"requestedKg": stockErr.RequestedKg,
			"availableKg": stockErr.AvailableKg,
			"shortfallKg": stockErr.ShortfallKg(),
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": transitionErr.Error(),
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, inventory.ErrProductNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A product in the cart no longer exists"})
	case errors.Is(err, orders.ErrOrderNumberAllocation):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not allocate order number, please contact support"})
	case errors.Is(err, orders.ErrTransient), errors.Is(err, inventory.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary problem, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error"})
	}
}
