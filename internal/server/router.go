package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/venturedraft/venturedraft-backend/internal/handlers"
	"github.com/venturedraft/venturedraft-backend/internal/middleware"
	"github.com/venturedraft/venturedraft-backend/internal/observability"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	Redis          *redis.Client
	AllowedOrigins string

	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	PlanHandler    *handlers.PlanHandler
	MessageHandler *handlers.MessageHandler
	ChatHandler    *handlers.ChatHandler
	ExportHandler  *handlers.ExportHandler
	HealthHandler  *handlers.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestMetrics(cfg.Metrics))

	// Cors
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", cfg.HealthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(cfg.Log, cfg.Redis, middleware.DefaultRateLimitConfig()))
	{
		auth.POST("/signup", cfg.AuthHandler.Signup)
		auth.POST("/login", cfg.AuthHandler.Login)
		auth.POST("/logout", cfg.AuthHandler.Logout)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.GET("/auth/me", cfg.AuthHandler.Me)
	// Plans
	protected.GET("/plans", cfg.PlanHandler.List)
	protected.POST("/plans", cfg.PlanHandler.Create)
	protected.GET("/plans/:id", cfg.PlanHandler.Get)
	protected.PATCH("/plans/:id", cfg.PlanHandler.Update)
	protected.DELETE("/plans/:id", cfg.PlanHandler.Delete)
	// Messages
	protected.GET("/plans/:id/messages", cfg.MessageHandler.List)
	protected.POST("/plans/:id/messages", cfg.MessageHandler.Append)
	// Model
	protected.POST("/plans/:id/chat", cfg.ChatHandler.Chat)
	protected.POST("/plans/:id/generate", cfg.ChatHandler.Generate)
	protected.POST("/plans/:id/title", cfg.ChatHandler.Title)
	// Export
	protected.GET("/plans/:id/export", cfg.ExportHandler.ExportHTML)

	return router
}
