package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/services"
)

// StatsHandler serves the fleet-readiness aggregate
type StatsHandler struct {
	fleet *services.FleetService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(fleet *services.FleetService) *StatsHandler {
	return &StatsHandler{fleet: fleet}
}

// Get returns application and server counts by status
func (h *StatsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.fleet.Stats())
}
