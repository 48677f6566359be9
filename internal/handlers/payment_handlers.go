package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/models"
	"github.com/sajanbk/meatshop-golang/internal/orders"
	"github.com/sajanbk/meatshop-golang/internal/redisx"
)

//
// --- Payment Callback Handler ---
//
// The gateway protocols (eSewa, Khalti, FonePay, banks) live outside this
// service; their server-to-server callbacks all land here with a normalized
// body posted by the gateway adapter.
//

// PaymentCallbackInput defines the normalized callback JSON.
type PaymentCallbackInput struct {
	OrderNumber   string `json:"orderNumber" binding:"required"`
	Status        string `json:"status" binding:"required"` // paid | failed
	TransactionID string `json:"transactionId"`
}

// PaymentCallback is the handler for POST /v1/payments/callback
// Gateways retry aggressively, so callbacks are deduplicated in Redis before
// touching the ledger.
func (h *Handlers) PaymentCallback(c *gin.Context) {
	var input PaymentCallbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	dedupKey := fmt.Sprintf(redisx.KeyPaymentDedup, input.OrderNumber, input.Status)
	if seen, _ := redisx.Exists(ctx, h.RDB, dedupKey); seen {
		c.JSON(http.StatusOK, gin.H{"message": "Already processed"})
		return
	}

	order, err := h.Ledger.RecordPayment(ctx, input.OrderNumber, models.PaymentStatus(input.Status), input.TransactionID)
	if err != nil {
		var validationErr *orders.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
		case errors.Is(err, orders.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown order number"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary problem, gateway should retry"})
		}
		return
	}

	_ = h.RDB.Set(ctx, dedupKey, "1", redisx.TTLPaymentDedup).Err()

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment recorded",
		"order":   order.OrderNumber,
		"status":  order.PaymentStatus,
	})
}
