package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/agreement"
	"backend/internal/analyze"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Waste Pickup API
// @version         1.0
// @description     Backend for the waste pickup marketplace: partner catalog, pickup requests, realtime threads, agreements, loyalty points, and AI waste classification.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("No configs/.env file found or error loading it")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if envOr("LOG_LEVEL", "") == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	log.Info().Msg("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	pickupRepo := repository.NewPickupRepository(db)
	chatRepo := repository.NewChatRepository(db)
	sigRepo := repository.NewSignatureRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	userService := service.NewUserService(userRepo)
	pickupService := service.NewPickupService(pickupRepo, pointsRepo, chatRepo, txManager, wsHub)
	chatService := service.NewChatService(chatRepo, pickupRepo, sigRepo, txManager, agreement.NewGenerator(), wsHub)
	pointsService := service.NewPointsService(pointsRepo, txManager)

	aiClient := analyze.NewClient(os.Getenv("AI_GATEWAY_API_KEY"))
	if gatewayURL := os.Getenv("AI_GATEWAY_URL"); gatewayURL != "" {
		aiClient.BaseURL = gatewayURL
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(userService)
	companyHandler := handler.NewCompanyHandler()
	pickupHandler := handler.NewPickupHandler(pickupService)
	chatHandler := handler.NewChatHandler(chatService)
	pointsHandler := handler.NewPointsHandler(pointsService)
	analyzeHandler := handler.NewAnalyzeHandler(aiClient)

	// Set up Gin Router
	router := gin.Default()
	router.Use(middleware.Metrics())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"), ",")
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

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint, one subscription per pickup thread
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret(), pickupService.CanAccess)
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	companyHandler.RegisterRoutes(router.Group(""))
	pickupHandler.RegisterRoutes(router.Group(""))
	chatHandler.RegisterRoutes(router.Group(""))
	pointsHandler.RegisterRoutes(router.Group(""))
	analyzeHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	log.Info().Str("port", port).Msg("Server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
