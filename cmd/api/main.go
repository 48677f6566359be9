package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sajanbk/meatshop-golang/internal/ai"
	"github.com/sajanbk/meatshop-golang/internal/auth"
	"github.com/sajanbk/meatshop-golang/internal/cartstore"
	"github.com/sajanbk/meatshop-golang/internal/catalog"
	"github.com/sajanbk/meatshop-golang/internal/config"
	"github.com/sajanbk/meatshop-golang/internal/database"
	"github.com/sajanbk/meatshop-golang/internal/events"
	"github.com/sajanbk/meatshop-golang/internal/handlers"
	"github.com/sajanbk/meatshop-golang/internal/inventory"
	"github.com/sajanbk/meatshop-golang/internal/orders"
	"github.com/sajanbk/meatshop-golang/internal/redisx"
	"github.com/sajanbk/meatshop-golang/internal/routes"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("CRITICAL ERROR: JWT_SECRET environment variable is not set.")
	}
	auth.SetSecret(cfg.JWTSecret)

	// 1. --- Database Connection ---
	db, err := database.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Redis (session carts, payment callback dedup) ---
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// 3. --- Kafka Event Producer (optional) ---
	// With no brokers configured the ledger simply skips publishing.
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, "meatshop-api")
		defer producer.Close()
	} else {
		log.Println("KAFKA_BROKERS not set, order events disabled.")
	}

	// 4. --- AI Service (optional) ---
	var aiService *ai.AIService
	if cfg.GeminiAPIKey != "" {
		aiService, err = ai.NewAIService(cfg.GeminiAPIKey, db)
		if err != nil {
			log.Fatalf("Failed to initialize AI Service: %v", err)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, AI chat disabled.")
	}

	// --- Application Setup ---
	// The reconciler is the only writer of stock levels; the ledger is the
	// only writer of orders. Everything else goes through them.
	catalogStore := catalog.NewStore(db)
	stock := inventory.NewReconciler(inventory.NewMySQLStore(db))
	orderStore := orders.NewMySQLStore(db)

	var publisher orders.EventPublisher
	if producer != nil {
		publisher = producer
	}
	ledger := orders.NewService(catalogStore, stock, orderStore, publisher)

	app := &handlers.Handlers{
		DB:        db,
		RDB:       rdb,
		Catalog:   catalogStore,
		Ledger:    ledger,
		Orders:    orderStore,
		Stock:     stock,
		Carts:     cartstore.New(rdb),
		AIService: aiService,
	}

	// --- Background Worker (Cron) ---
	// Sweeps hourly for unpaid online orders and returns their stock.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: monitoring for overdue orders...")

		for range ticker.C {
			app.ProcessOverdueOrders()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app, cfg.FrontendURL)

	// --- Start Server ---
	log.Printf("Starting meat shop API server on %s...", cfg.HTTPAddr)
	if err := router.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
