package models

import (
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
)

// Server represents a host machine, optionally attached to one Application
// This is a database-agnostic business entity
type Server struct {
	Id         string
	Hostname   string // natural key, unique and case-sensitive
	IPAddress  string
	AppId      *string // weak reference, resolved through the application table
	Status     lifecycle.Status
	// PingStatus is the last known reachability of the host. Informational
	// only; nothing derives from it.
	PingStatus bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy so callers cannot reach into store state
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	if s.AppId != nil {
		id := *s.AppId
		c.AppId = &id
	}
	return &c
}

// ServerFields are the operator-supplied fields of a new server
type ServerFields struct {
	Hostname  string  `json:"hostname" validate:"required"`
	IPAddress string  `json:"ip_address" validate:"required,ip"`
	AppId     *string `json:"app_id"`
}

// ServerPatch is a partial update. Nil fields are left untouched; UnassignApp
// clears the application reference and wins over AppId.
type ServerPatch struct {
	Hostname    *string `json:"hostname" validate:"omitnil,min=1"`
	IPAddress   *string `json:"ip_address" validate:"omitnil,ip"`
	AppId       *string `json:"app_id"`
	UnassignApp bool    `json:"unassign_app"`
}

// Empty reports whether the patch changes nothing
func (p ServerPatch) Empty() bool {
	return p.Hostname == nil && p.IPAddress == nil && p.AppId == nil && !p.UnassignApp
}

// Apply writes the patch onto srv and reports whether any field changed
func (p ServerPatch) Apply(srv *Server) bool {
	changed := false
	if p.Hostname != nil && *p.Hostname != srv.Hostname {
		srv.Hostname = *p.Hostname
		changed = true
	}
	if p.IPAddress != nil && *p.IPAddress != srv.IPAddress {
		srv.IPAddress = *p.IPAddress
		changed = true
	}
	switch {
	case p.UnassignApp:
		if srv.AppId != nil {
			srv.AppId = nil
			changed = true
		}
	case p.AppId != nil:
		if srv.AppId == nil || *srv.AppId != *p.AppId {
			id := *p.AppId
			srv.AppId = &id
			changed = true
		}
	}
	return changed
}
