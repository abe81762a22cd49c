package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/venturedraft/venturedraft-backend/internal/db"
	"github.com/venturedraft/venturedraft-backend/internal/handlers"
	"github.com/venturedraft/venturedraft-backend/internal/middleware"
	"github.com/venturedraft/venturedraft-backend/internal/observability"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/platform/openai"
	"github.com/venturedraft/venturedraft-backend/internal/repos"
	"github.com/venturedraft/venturedraft-backend/internal/server"
	"github.com/venturedraft/venturedraft-backend/internal/services"
	"github.com/venturedraft/venturedraft-backend/internal/utils"
)

func main() {
	// A missing .env is fine in deployed environments.
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	appEnv := utils.GetEnv("APP_ENV", "development", log)
	port := utils.GetEnv("PORT", "8080", log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "", log)
	sufficiencyThreshold := utils.GetEnvAsInt("CHAT_SUFFICIENCY_THRESHOLD", 0, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Redis (optional; rate limiting degrades to pass-through without it)
	rdb := db.NewRedisClient(log)

	// Metrics
	metrics := observability.NewMetrics()

	// Model client
	model, err := openai.NewClient(log)
	if err != nil {
		log.Fatal("Model client init failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	sessionRepo := repos.NewSessionRepo(thePG, log)
	planRepo := repos.NewPlanRepo(thePG, log)
	messageRepo := repos.NewMessageRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, sessionRepo)
	planService := services.NewPlanService(thePG, log, planRepo)
	messageService := services.NewMessageService(thePG, log, planRepo, messageRepo)
	conversationService := services.NewConversationService(thePG, log, planRepo, messageRepo, model, metrics, sufficiencyThreshold)
	generatorService := services.NewGeneratorService(thePG, log, planRepo, messageRepo, model, metrics)
	titlerService := services.NewTitlerService(thePG, log, planRepo, messageRepo, model, metrics)
	exportService := services.NewExportService(thePG, log, planRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(log, authService, appEnv == "production")
	planHandler := handlers.NewPlanHandler(log, planService)
	messageHandler := handlers.NewMessageHandler(log, messageService)
	chatHandler := handlers.NewChatHandler(log, conversationService, generatorService, titlerService)
	exportHandler := handlers.NewExportHandler(log, exportService)
	healthHandler := handlers.NewHealthHandler(log, thePG)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		Redis:          rdb,
		AllowedOrigins: allowedOrigins,
		AuthMiddleware: authMiddleware,
		AuthHandler:    authHandler,
		PlanHandler:    planHandler,
		MessageHandler: messageHandler,
		ChatHandler:    chatHandler,
		ExportHandler:  exportHandler,
		HealthHandler:  healthHandler,
	})

	log.Info("Starting server", "port", port, "env", appEnv)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
