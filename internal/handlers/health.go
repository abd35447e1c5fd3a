package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store   *store.Store
	backend string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s *store.Store, backend string) *HealthHandler {
	return &HealthHandler{store: s, backend: backend}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "shutdown-manager",
		"backend":   h.backend,
		"revision":  h.store.Revision(),
	})
}
