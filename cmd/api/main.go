package main

import (
	"os"

	_ "github.com/maxwelmichira/timberflow/api/swagger" // swagger docs
	"github.com/maxwelmichira/timberflow/internal/database"
	"github.com/maxwelmichira/timberflow/internal/handler"
	"github.com/maxwelmichira/timberflow/internal/middleware"
	"github.com/maxwelmichira/timberflow/internal/repository"
	"github.com/maxwelmichira/timberflow/internal/service"
	"github.com/maxwelmichira/timberflow/internal/websocket"
	"github.com/maxwelmichira/timberflow/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Timberflow API
// @version         1.0
// @description     Timber yard management: procurement, processing, inventory, sales, and finance.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init("timberflow", os.Getenv("GIN_MODE") != "release")

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info().Msg("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "timberflow"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	userService := service.NewUserService(userRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, auditRepo, txManager, wsHub)
	productService := service.NewProductService(productRepo, inventoryRepo, auditRepo, txManager)
	salesService := service.NewSalesService(saleRepo, customerRepo, inventoryRepo, auditRepo, inventoryService, txManager)
	processingService := service.NewProcessingService(batchRepo, purchaseRepo, productRepo, auditRepo, inventoryService, txManager)
	procurementService := service.NewProcurementService(supplierRepo, purchaseRepo, auditRepo, txManager)
	financeService := service.NewFinanceService(financeRepo, auditRepo, txManager)
	analyticsService := service.NewAnalyticsService(analyticsRepo, saleRepo, financeRepo, inventoryRepo, batchRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	salesHandler := handler.NewSalesHandler(salesService)
	processingHandler := handler.NewProcessingHandler(processingService)
	procurementHandler := handler.NewProcurementHandler(procurementService)
	financeHandler := handler.NewFinanceHandler(financeService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	productHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	salesHandler.RegisterRoutes(router.Group(""))
	processingHandler.RegisterRoutes(router.Group(""))
	procurementHandler.RegisterRoutes(router.Group(""))
	financeHandler.RegisterRoutes(router.Group(""))
	analyticsHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("Server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
