package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"rust-trader/internal/api"
	"rust-trader/internal/config"
	"rust-trader/internal/database"
	inventoryService "rust-trader/internal/services/inventory"
	pricingService "rust-trader/internal/services/pricing"
	"rust-trader/internal/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize configuration
	cfg := config.Load()

	if cfg.Environment == "development" {
		log.SetLevel(log.DebugLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Initialize services
	priceCache := pricingService.NewPriceCache()
	pricing := pricingService.NewPricingService(cfg.PriceBaseURL, cfg.SteamAppID, cfg.SteamCurrency, cfg.PriceWorkers, priceCache)
	inventory := inventoryService.NewInventoryService(cfg.InventoryBaseURL, cfg.SteamAppID, cfg.CurrencySymbol, pricing)

	// Initialize WebSocket hub; new prices are pushed to connected clients
	wsHub := websocket.NewHub()
	go wsHub.Run()
	pricing.SetListener(wsHub)

	// Initialize Gin router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_prices": priceCache.Len()})
	})

	// API routes
	apiGroup := r.Group("/api/v1")
	api.SetupRoutes(apiGroup, db, inventory)

	// WebSocket endpoint
	r.GET("/ws", func(c *gin.Context) {
		websocket.HandleWebSocket(wsHub, c.Writer, c.Request)
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
