package models

import (
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
)

// CreateServerRequest represents the request body for registering a server
type CreateServerRequest struct {
	Hostname        string  `json:"hostname" binding:"required"`
	IPAddress       string  `json:"ip_address" binding:"required,ip"`
	AppId           *string `json:"app_id"`
	AllowUnassigned bool    `json:"allow_unassigned"` // store unknown app_id as null instead of failing
}

// ToFields converts the request DTO into store input
func (req *CreateServerRequest) ToFields() ServerFields {
	appId := req.AppId
	if appId != nil && *appId == "" {
		appId = nil
	}
	return ServerFields{
		Hostname:  req.Hostname,
		IPAddress: req.IPAddress,
		AppId:     appId,
	}
}

// UpdateServerRequest represents a partial field update. Omitted fields are kept.
type UpdateServerRequest struct {
	Hostname    *string `json:"hostname"`
	IPAddress   *string `json:"ip_address"`
	AppId       *string `json:"app_id"`
	UnassignApp bool    `json:"unassign_app"`
}

// ToPatch converts the request DTO into a store patch
func (req *UpdateServerRequest) ToPatch() ServerPatch {
	return ServerPatch{
		Hostname:    req.Hostname,
		IPAddress:   req.IPAddress,
		AppId:       req.AppId,
		UnassignApp: req.UnassignApp,
	}
}

// ServerResponse represents the response structure for a single server
type ServerResponse struct {
	Id              string           `json:"id"`
	Hostname        string           `json:"hostname"`
	IPAddress       string           `json:"ip_address"`
	AppId           *string          `json:"app_id"`
	ApplicationName string           `json:"application_name"`
	Status          lifecycle.Status `json:"status"`
	PingStatus      bool             `json:"ping_status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ServerListResponse represents the response structure for listing servers
type ServerListResponse struct {
	Servers []ServerResponse `json:"servers"`
	Total   int              `json:"total"`
}

// ToResponse converts a domain Server to a ServerResponse DTO. The
// application name is resolved by the caller.
func (s *Server) ToResponse(applicationName string) ServerResponse {
	return ServerResponse{
		Id:              s.Id,
		Hostname:        s.Hostname,
		IPAddress:       s.IPAddress,
		AppId:           s.AppId,
		ApplicationName: applicationName,
		Status:          s.Status,
		PingStatus:      s.PingStatus,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
