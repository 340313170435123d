package main

import (
	"context"
	"log"

	"asset-backend/internal/config"
	"asset-backend/internal/database"
	"asset-backend/internal/handler"
	"asset-backend/internal/middleware"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"
	"asset-backend/internal/service"
	"asset-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	// Set up stores. The postgres driver is the production path; the memory
	// driver runs everything in process for demos and local dev.
	var (
		txm         repository.TransactionManager
		requestRepo repository.RequestRepository
		assetRepo   repository.AssetRepository
		syncRepo    repository.SyncRepository
		userRepo    repository.UserRepository
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store := repository.NewMemoryStore()
		txm = store
		requestRepo = repository.NewMemoryRequestRepository(store)
		assetRepo = repository.NewMemoryAssetRepository(store)
		syncRepo = repository.NewMemorySyncRepository(store)
		userRepo = repository.NewMemoryUserRepository(store)
		log.Println("Using in-memory store")
	default:
		db, err := database.NewConnection(cfg.DSN())
		if err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		txm = repository.NewTransactionManager(db)
		requestRepo = repository.NewRequestRepository(db)
		assetRepo = repository.NewAssetRepository(db)
		syncRepo = repository.NewSyncRepository(db)
		userRepo = repository.NewUserRepository(db)
		log.Println("Connected to PostgreSQL successfully.")
	}

	// Set up WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	flows := service.NewFlowResolver(cfg.DemolishFlowThreshold)
	demolishPolicy := service.NewDemolishPolicy(flows, cfg.DemolishBudgetDocThreshold, syncRepo)
	transferPolicy := service.NewTransferPolicy(flows, assetRepo, syncRepo)

	demolishService := service.NewRequestService(demolishPolicy, requestRepo, assetRepo, txm, wsHub)
	transferService := service.NewRequestService(transferPolicy, requestRepo, assetRepo, txm, wsHub)
	assetService := service.NewAssetService(assetRepo)
	syncService := service.NewSyncService(syncRepo, wsHub)
	userService := service.NewUserService(userRepo)

	if cfg.StoreDriver == config.DriverMemory {
		seedAdmin(userService)
	}

	demolishHandler := handler.NewRequestHandler(demolishService, "demolish-requests")
	transferHandler := handler.NewRequestHandler(transferService, "transfer-requests")
	assetHandler := handler.NewAssetHandler(assetService)
	syncHandler := handler.NewSyncHandler(syncService)
	userHandler := handler.NewUserHandler(userService)

	// Set up Gin Router
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	demolishHandler.RegisterRoutes(router.Group(""))
	transferHandler.RegisterRoutes(router.Group(""))
	assetHandler.RegisterRoutes(router.Group(""))
	syncHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedAdmin makes the memory store usable out of the box.
func seedAdmin(users service.UserService) {
	_, err := users.CreateUser(context.Background(), service.CreateUserRequest{
		Email:       "admin@example.com",
		DisplayName: "Administrator",
		Password:    "admin123",
		Role:        model.RoleAdmin,
	})
	if err != nil {
		log.Printf("Failed to seed admin user: %v", err)
		return
	}
	log.Println("Seeded admin@example.com / admin123 (memory store only)")
}
