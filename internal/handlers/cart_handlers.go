package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/orders"
)

//
// --- Cart Handlers (session cart in Redis) ---
//

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID  int64   `json:"productId" binding:"required"`
	QuantityKg float64 `json:"quantityKg" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := c.GetInt64("userID")

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Catalog.GetProduct(c.Request.Context(), input.ProductID)
	if err != nil {
		if err == catalog.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check product"})
		return
	}
	if !p.Orderable() {
		c.JSON(http.StatusConflict, gin.H{"error": "उत्पादन उपलब्ध छैन / Product is not available"})
		return
	}

	// The cart is only a wish list: the hard stock check happens at checkout.
	// Still reject quantities that obviously cannot be fulfilled.
	current, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}
	if current.Quantity(input.ProductID)+input.QuantityKg > p.StockKg {
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock for that quantity"})
		return
	}

	newQty, err := h.Carts.AddItem(c.Request.Context(), userID, input.ProductID, input.QuantityKg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "कार्टमा थपियो / Added to cart",
		"quantityKg": newQty,
	})
}

// cartLineResponse is one priced cart line in the GetCart response.
type cartLineResponse struct {
	ProductID  int64   `json:"productId"`
	Name       string  `json:"name"`
	NameNepali string  `json:"nameNepali"`
	PricePerKg float64 `json:"pricePerKg"`
	QuantityKg float64 `json:"quantityKg"`
	LineTotal  float64 `json:"lineTotal"`
	StockKg    float64 `json:"stockKg"`
}

// GetCart is the handler for GET /v1/cart
// Lines are priced from the current catalog; unavailable products are
// silently dropped from the stored cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := c.GetInt64("userID")
	ctx := c.Request.Context()

	cart, err := h.Carts.Get(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read cart"})
		return
	}

	var lines []cartLineResponse
	var subtotal float64
	for _, item := range cart.Items {
		p, err := h.Catalog.GetProduct(ctx, item.ProductID)
		if err == catalog.ErrNotFound {
			_ = h.Carts.RemoveItem(ctx, userID, item.ProductID)
			continue
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to price cart"})
			return
		}
		if !p.Orderable() {
			_ = h.Carts.RemoveItem(ctx, userID, item.ProductID)
			continue
		}

		line := cartLineResponse{
			ProductID:  p.ID,
			Name:       p.Name,
			NameNepali: p.NameNepali,
			PricePerKg: p.PricePerKg,
			QuantityKg: item.QuantityKg,
			LineTotal:  item.QuantityKg * p.PricePerKg,
			StockKg:    p.StockKg,
		}
		subtotal += line.LineTotal
		lines = append(lines, line)
	}

	if lines == nil {
		lines = []cartLineResponse{}
	}
	deliveryCharge := orders.DeliveryCharge(subtotal, nil)

	c.JSON(http.StatusOK, gin.H{
		"items":          lines,
		"subtotal":       subtotal,
		"deliveryCharge": deliveryCharge,
		"total":          subtotal + deliveryCharge,
	})
}

// UpdateCartItemInput defines the JSON for setting an item's quantity.
type UpdateCartItemInput struct {
	QuantityKg float64 `json:"quantityKg" binding:"gte=0"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:product_id
// Quantity 0 removes the line.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := c.GetInt64("userID")
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.QuantityKg > 0 {
		p, err := h.Catalog.GetProduct(c.Request.Context(), productID)
		if err != nil {
			if err == catalog.ErrNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check product"})
			return
		}
		if input.QuantityKg > p.StockKg {
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock for that quantity"})
			return
		}
	}

	if err := h.Carts.SetItem(c.Request.Context(), userID, productID, input.QuantityKg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart updated"})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:product_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID := c.GetInt64("userID")
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := h.Carts.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
