package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"petition-service/internal/http/middleware"
)

type RouterConfig struct {
	Environment    string
	AllowedOrigins []string
	Metrics        http.Handler
	Observer       middleware.HTTPObserver
	Health         func(ctx context.Context) error
	Log            zerolog.Logger
}

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, cfg RouterConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Log, cfg.Observer))
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", handler.login)
		public.GET("/reference", handler.reference)
	}

	protected := router.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.GET("/auth/me", handler.me)
		protected.POST("/auth/logout", handler.logout)

		protected.GET("/petitions", handler.listPetitions)
		protected.POST("/petitions", handler.createPetition)
		protected.GET("/petitions/:id", handler.getPetition)
		protected.GET("/petitions/:id/history", handler.petitionHistory)
		protected.PATCH("/petitions/:id/assign", handler.assignPetition)
		protected.PATCH("/petitions/:id/report", handler.reportPetition)
		protected.PATCH("/petitions/:id/decide", handler.decidePetition)

		protected.GET("/notifications", handler.listNotifications)
		protected.POST("/notifications/:id/read", handler.markNotificationRead)

		protected.GET("/officers", handler.listOfficers)
		protected.GET("/analytics/summary", handler.analyticsSummary)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
