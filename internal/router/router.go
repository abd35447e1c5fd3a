package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/handlers"
	"github.com/imyashkale/shutdownmanager/internal/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Health       *handlers.HealthHandler
	Applications *handlers.ApplicationHandler
	Servers      *handlers.ServerHandler
	Stats        *handlers.StatsHandler
	Metrics      http.Handler
}

// Setup configures and returns the application router
func Setup(h Handlers, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Apply CORS middleware globally
	router.Use(middleware.CORS(allowedOrigins))

	if h.Metrics != nil {
		router.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Health check
	v1.GET("/health", h.Health.Check)

	// Fleet readiness
	v1.GET("/stats", h.Stats.Get)

	// Application routes
	apps := v1.Group("/applications")
	{
		apps.GET("", h.Applications.List)
		apps.POST("", h.Applications.Create)
		apps.GET("/template", h.Applications.Template)
		apps.POST("/import", h.Applications.Import)
		apps.GET("/:id", h.Applications.Get)
		apps.PATCH("/:id", h.Applications.Update)
		apps.PUT("/:id", h.Applications.UpdateStatus)
		apps.DELETE("/:id", h.Applications.Delete)
	}

	// Server routes
	servers := v1.Group("/servers")
	{
		servers.GET("", h.Servers.List)
		servers.POST("", h.Servers.Create)
		servers.GET("/template", h.Servers.Template)
		servers.POST("/import", h.Servers.Import)
		servers.GET("/:id", h.Servers.Get)
		servers.PATCH("/:id", h.Servers.Update)
		servers.PUT("/:id", h.Servers.UpdateStatus)
		servers.DELETE("/:id", h.Servers.Delete)
	}

	return router
}
