package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// ServerHandler handles server-related requests
type ServerHandler struct {
	store          *store.Store
	fleet          *services.FleetService
	importer       *services.ImportService
	maxUploadBytes int64
}

// NewServerHandler creates a new server handler
func NewServerHandler(s *store.Store, fleet *services.FleetService, importer *services.ImportService, maxUploadBytes int64) *ServerHandler {
	return &ServerHandler{
		store:          s,
		fleet:          fleet,
		importer:       importer,
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles listing all servers
func (h *ServerHandler) List(c *gin.Context) {
	servers := h.fleet.ListServers()
	c.JSON(http.StatusOK, models.ServerListResponse{
		Servers: servers,
		Total:   len(servers),
	})
}

// Create handles registering a new server
func (h *ServerHandler) Create(c *gin.Context) {
	var req models.CreateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var opts []store.CreateOption
	if req.AllowUnassigned {
		opts = append(opts, store.AllowUnassigned())
	}

	srv, err := h.store.CreateServer(c.Request.Context(), req.ToFields(), opts...)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, srv.ToResponse(h.fleet.ApplicationNameFor(srv.AppId)))
}

// Get handles retrieving a single server
func (h *ServerHandler) Get(c *gin.Context) {
	view, err := h.fleet.ServerView(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update handles a partial field update
func (h *ServerHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch := req.ToPatch()
	if patch.Empty() {
		badRequest(c, errEmptyPatch)
		return
	}

	if _, _, err := h.store.UpdateServer(c.Request.Context(), id, patch); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// UpdateStatus handles moving a server along the shutdown lifecycle
func (h *ServerHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	current, err := h.store.GetServer(id)
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := req.Target(current.Status)
	if err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.store.UpdateServerStatus(c.Request.Context(), id, target); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// Delete handles removing a server
func (h *ServerHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteServer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Server deleted successfully",
	})
}

// Template handles downloading the server import template
func (h *ServerHandler) Template(c *gin.Context) {
	serveTemplate(c, models.EntityServer)
}

// Import handles a bulk create-or-update from an uploaded file
func (h *ServerHandler) Import(c *gin.Context) {
	rows, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.importer.ImportServers(c.Request.Context(), rows))
}
