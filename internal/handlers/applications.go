package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

var errEmptyPatch = errors.New("no fields to update")

// ApplicationHandler handles application-related requests
type ApplicationHandler struct {
	store          *store.Store
	fleet          *services.FleetService
	importer       *services.ImportService
	maxUploadBytes int64
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(s *store.Store, fleet *services.FleetService, importer *services.ImportService, maxUploadBytes int64) *ApplicationHandler {
	return &ApplicationHandler{
		store:          s,
		fleet:          fleet,
		importer:       importer,
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles listing all applications with their servers
func (h *ApplicationHandler) List(c *gin.Context) {
	apps := h.fleet.ListApplications()
	c.JSON(http.StatusOK, models.ApplicationListResponse{
		Applications: apps,
		Total:        len(apps),
	})
}

// Create handles registering a new application
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req models.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	app, err := h.store.CreateApplication(c.Request.Context(), req.ToFields())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app.ToResponse(nil))
}

// Get handles retrieving a single application
func (h *ApplicationHandler) Get(c *gin.Context) {
	view, err := h.fleet.ApplicationView(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Update handles a partial field update
func (h *ApplicationHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch := req.ToPatch()
	if patch.Empty() {
		badRequest(c, errEmptyPatch)
		return
	}

	if _, _, err := h.store.UpdateApplication(c.Request.Context(), id, patch); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// UpdateStatus handles moving an application along the shutdown lifecycle
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	current, err := h.store.GetApplication(id)
	if err != nil {
		respondError(c, err)
		return
	}
	target, err := req.Target(current.Status)
	if err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.store.UpdateApplicationStatus(c.Request.Context(), id, target); err != nil {
		respondError(c, err)
		return
	}
	h.Get(c)
}

// Delete handles removing an application. Its servers keep a dangling reference.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteApplication(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Application deleted successfully",
	})
}

// Template handles downloading the application import template
func (h *ApplicationHandler) Template(c *gin.Context) {
	serveTemplate(c, models.EntityApplication)
}

// Import handles a bulk create-or-update from an uploaded file
func (h *ApplicationHandler) Import(c *gin.Context) {
	rows, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.importer.ImportApplications(c.Request.Context(), rows))
}
