package handlers

import (
	"database/sql"

	"github.com/sajanbk/meatshop-golang/internal/ai"
	"github.com/sajanbk/meatshop-golang/internal/cartstore"
	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/inventory"
	"github.com/sajanbk/meatshop-golang/internal/orders"
	"github.com/redis/go-redis/v9"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB      *sql.DB
	RDB     *redis.Client
	Catalog *catalog.Store
	Ledger  *orders.Service
	Orders  *orders.MySQLStore
	Stock   *inventory.Reconciler
	Carts   *cartstore.Carts

	// AIService is optional; the chat endpoint reports unavailable without it.
	AIService *ai.AIService
}
