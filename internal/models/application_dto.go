package models

import (
	"errors"
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
)

var errMissingStatus = errors.New("either status or shutdown_verified is required")

// CreateApplicationRequest represents the request body for registering an application
type CreateApplicationRequest struct {
	Name   string `json:"name" binding:"required"`
	Owner  string `json:"owner"`
	WebUI  string `json:"web_ui"`
	DBPort *int   `json:"db_port" binding:"omitnil,min=1,max=65535"`
}

// ToFields converts the request DTO into store input
func (req *CreateApplicationRequest) ToFields() ApplicationFields {
	return ApplicationFields{
		Name:   req.Name,
		Owner:  req.Owner,
		WebUI:  req.WebUI,
		DBPort: req.DBPort,
	}
}

// UpdateApplicationRequest represents a partial field update. Omitted fields are kept.
type UpdateApplicationRequest struct {
	Name   *string `json:"name"`
	Owner  *string `json:"owner"`
	WebUI  *string `json:"web_ui"`
	DBPort *int    `json:"db_port"`
}

// ToPatch converts the request DTO into a store patch
func (req *UpdateApplicationRequest) ToPatch() ApplicationPatch {
	return ApplicationPatch{
		Name:   req.Name,
		Owner:  req.Owner,
		WebUI:  req.WebUI,
		DBPort: req.DBPort,
	}
}

// UpdateStatusRequest moves an entity along the shutdown lifecycle. Either
// field may be used; status wins when both are present.
type UpdateStatusRequest struct {
	Status           string `json:"status"`
	ShutdownVerified *bool  `json:"shutdown_verified"`
}

// Target resolves the requested status given the entity's current one
func (req *UpdateStatusRequest) Target(current lifecycle.Status) (lifecycle.Status, error) {
	if req.Status != "" {
		return lifecycle.ParseStatus(req.Status)
	}
	if req.ShutdownVerified == nil {
		return "", errMissingStatus
	}
	if *req.ShutdownVerified {
		return lifecycle.ShutdownVerified, nil
	}
	if current == lifecycle.ShutdownVerified {
		// un-verifying is a regression and is rejected by the store
		return lifecycle.Active, nil
	}
	return current, nil
}

// ApplicationResponse represents the response structure for a single application
type ApplicationResponse struct {
	Id               string           `json:"id"`
	Name             string           `json:"name"`
	Owner            string           `json:"owner"`
	WebUI            string           `json:"web_ui"`
	DBPort           *int             `json:"db_port"`
	Status           lifecycle.Status `json:"status"`
	ShutdownVerified bool             `json:"shutdown_verified"`
	Servers          []ServerResponse `json:"servers"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ApplicationListResponse represents the response structure for listing applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int                   `json:"total"`
}

// ToResponse converts a domain Application to an ApplicationResponse DTO
func (a *Application) ToResponse(servers []ServerResponse) ApplicationResponse {
	if servers == nil {
		servers = []ServerResponse{}
	}
	return ApplicationResponse{
		Id:               a.Id,
		Name:             a.Name,
		Owner:            a.Owner,
		WebUI:            a.WebUI,
		DBPort:           a.DBPort,
		Status:           a.Status,
		ShutdownVerified: a.ShutdownVerified,
		Servers:          servers,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
