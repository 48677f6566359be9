package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/models"
)

//
// --- Public Catalog Handlers ---
//

// productView decorates a product with its display-only fields.
type productView struct {
	models.Product
	StockStatus     string `json:"stockStatus"`
	MeatTypeDisplay string `json:"meatTypeDisplay"`
}

func toView(p models.Product) productView {
	return productView{
		Product:         p,
		StockStatus:     p.StockStatus(),
		MeatTypeDisplay: models.MeatTypeDisplay(p.MeatType),
	}
}

// ListProducts is the handler for GET /v1/products
// Optional filters: ?category=<id>&meat_type=<code>&featured=1
func (h *Handlers) ListProducts(c *gin.Context) {
	var f catalog.Filter
	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		f.CategoryID = id
	}
	f.MeatType = c.Query("meat_type")
	f.FeaturedOnly = c.Query("featured") == "1"

	products, err := h.Catalog.ListAvailable(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": views})
}

// SearchProducts is the handler for GET /v1/products/search?q=...
func (h *Handlers) SearchProducts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'q' is required"})
		return
	}

	products, err := h.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toView(p))
	}
	c.JSON(http.StatusOK, gin.H{"products": views, "query": q})
}

// GetProduct is the handler for GET /v1/products/:slug
func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.Catalog.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if err == catalog.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toView(*p)})
}

// GetCategories is the handler for GET /v1/categories
func (h *Handlers) GetCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

//
// --- Admin Product Handlers ---
//

// ProductInput defines the JSON for creating/updating a product.
type ProductInput struct {
	CategoryID        int64   `json:"categoryId" binding:"required"`
	Name              string  `json:"name" binding:"required"`
	NameNepali        string  `json:"nameNepali" binding:"required"`
	Description       string  `json:"description" binding:"required"`
	DescriptionNepali *string `json:"descriptionNepali"`
	PricePerKg        float64 `json:"pricePerKg" binding:"required,gt=0"`
	StockKg           float64 `json:"stockKg" binding:"gte=0"`
	MinOrderKg        float64 `json:"minOrderKg" binding:"gte=0"`
	MeatType          string  `json:"meatType" binding:"required"`
	IsFeatured        bool    `json:"isFeatured"`
	IsAvailable       *bool   `json:"isAvailable"`
	ImageURL          *string `json:"imageUrl"`
}

// CreateProduct is the handler for POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	minOrder := input.MinOrderKg
	if minOrder == 0 {
		minOrder = 0.5
	}
	available := input.StockKg > 0
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	now := time.Now()
	res, err := h.DB.Exec(`
		INSERT INTO products
			(category_id, name, name_nepali, slug, description, description_nepali,
			 price_per_kg, stock_kg, min_order_kg, meat_type,
			 is_featured, is_available, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		input.CategoryID, input.Name, input.NameNepali, slug.Make(input.Name),
		input.Description, input.DescriptionNepali,
		input.PricePerKg, input.StockKg, minOrder, input.MeatType,
		input.IsFeatured, available, input.ImageURL, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "id": id})
}

// UpdateProduct is the handler for PUT /v1/admin/products/:id
// Note: stock_kg is deliberately NOT updatable here — stock only moves
// through the inventory reconciler or the dedicated restock endpoint.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	res, err := h.DB.Exec(`
		UPDATE products SET
			category_id = ?, name = ?, name_nepali = ?, slug = ?,
			description = ?, description_nepali = ?,
			price_per_kg = ?, min_order_kg = ?, meat_type = ?,
			is_featured = ?, is_available = ?, image_url = ?, updated_at = ?
		WHERE id = ?`,
		input.CategoryID, input.Name, input.NameNepali, slug.Make(input.Name),
		input.Description, input.DescriptionNepali,
		input.PricePerKg, input.MinOrderKg, input.MeatType,
		input.IsFeatured, available, input.ImageURL, time.Now(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// RestockInput defines the JSON for adding stock.
type RestockInput struct {
	QuantityKg float64 `json:"quantityKg" binding:"required,gt=0"`
}

// RestockProduct is the handler for POST /v1/admin/products/:id/restock
// It routes the stock addition through the reconciler so products stay the
// reconciler's exclusive write domain.
func (h *Handlers) RestockProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var input RestockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.Stock.Store.AddBack(c.Request.Context(), productID, input.QuantityKg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock added"})
}

// DeleteProduct is the handler for DELETE /v1/admin/products/:id
// Products referenced by historical orders are never hard-deleted; this only
// takes them off the shelf.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	res, err := h.DB.Exec(
		"UPDATE products SET is_available = 0, updated_at = ? WHERE id = ?",
		time.Now(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product removed from catalog"})
}
