package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajanbk/meatshop-golang/internal/handlers"
	"github.com/sajanbk/meatshop-golang/internal/middleware"
)

// CORSMiddleware tells the browser the configured frontend origin may call us.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Strictly allow ONLY the configured frontend
		c.Writer.Header().Set("Access-Control-Allow-Origin", frontendURL)

		// 2. Allow standard security credentials
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// 3. Allow the headers we actually use (specifically "Authorization" for JWT tokens)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		// 4. Allow the HTTP methods we use in our API
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// 5. Handle the "Preflight" OPTIONS request
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, frontendURL string) *gin.Engine {
	router := gin.Default()

	// CORS must be the very first thing the router uses.
	router.Use(CORSMiddleware(frontendURL))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)

		// --- Public Catalog Routes ---
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/search", h.SearchProducts)
		v1.GET("/products/:slug", h.GetProduct)
		v1.GET("/categories", h.GetCategories)
		v1.GET("/delivery-areas", h.ListDeliveryAreas)

		// --- Payment Gateway Callback (server-to-server) ---
		v1.POST("/payments/callback", h.PaymentCallback)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.PUT("/cart/items/:product_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:product_id", h.DeleteCartItem)

			// --- Checkout & Orders ---
			auth.POST("/checkout", h.Checkout)
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)
			auth.POST("/orders/:id/cancel", h.CancelMyOrder)

			// --- AI Chat Route ---
			auth.POST("/ai/chat", h.ChatAI)
		}

		// --- Staff Routes (order fulfilment) ---
		staff := v1.Group("/staff")
		staff.Use(middleware.AuthMiddleware(h.DB))
		staff.Use(middleware.StaffMiddleware())
		{
			staff.GET("/orders", h.ListOrders)
			staff.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		}

		// --- Admin Routes (back office) ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.POST("/products/:id/restock", h.RestockProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.GET("/users", h.ListUsers)
			admin.PATCH("/users/:id/role", h.UpdateUserRole)
			admin.PATCH("/users/:id/deactivate", h.DeactivateUser)

			admin.POST("/delivery-areas", h.CreateDeliveryArea)
			admin.PUT("/delivery-areas/:id", h.UpdateDeliveryArea)

			admin.GET("/dashboard-stats", h.GetAdminStats)
			admin.GET("/orders/export", h.ExportOrdersExcel)
			admin.GET("/orders/:id/audit", h.GetOrderAuditLog)
		}
	}

	return router
}
