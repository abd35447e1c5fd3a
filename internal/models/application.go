package models

import (
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
)

// Application represents a logical service tracked for decommissioning
// This is a database-agnostic business entity
type Application struct {
	Id               string
	Name             string // natural key, unique and case-sensitive
	Owner            string
	WebUI            string
	DBPort           *int
	Status           lifecycle.Status
	ShutdownVerified bool // mirrors Status == shutdown_verified
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetStatus updates the status and keeps ShutdownVerified consistent with it
func (a *Application) SetStatus(s lifecycle.Status) {
	a.Status = s
	a.ShutdownVerified = s == lifecycle.ShutdownVerified
}

// Clone returns a deep copy so callers cannot reach into store state
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.DBPort != nil {
		port := *a.DBPort
		c.DBPort = &port
	}
	return &c
}

// ApplicationFields are the operator-supplied fields of a new application
type ApplicationFields struct {
	Name   string `json:"name" validate:"required"`
	Owner  string `json:"owner"`
	WebUI  string `json:"web_ui"`
	DBPort *int   `json:"db_port" validate:"omitnil,min=1,max=65535"`
}

// ApplicationPatch is a partial update. Nil fields are left untouched.
type ApplicationPatch struct {
	Name   *string `json:"name" validate:"omitnil,min=1"`
	Owner  *string `json:"owner"`
	WebUI  *string `json:"web_ui"`
	DBPort *int    `json:"db_port" validate:"omitnil,min=1,max=65535"`
}

// Empty reports whether the patch changes nothing
func (p ApplicationPatch) Empty() bool {
	return p.Name == nil && p.Owner == nil && p.WebUI == nil && p.DBPort == nil
}

// Apply writes the patch onto app and reports whether any field changed
func (p ApplicationPatch) Apply(app *Application) bool {
	changed := false
	if p.Name != nil && *p.Name != app.Name {
		app.Name = *p.Name
		changed = true
	}
	if p.Owner != nil && *p.Owner != app.Owner {
		app.Owner = *p.Owner
		changed = true
	}
	if p.WebUI != nil && *p.WebUI != app.WebUI {
		app.WebUI = *p.WebUI
		changed = true
	}
	if p.DBPort != nil && (app.DBPort == nil || *app.DBPort != *p.DBPort) {
		port := *p.DBPort
		app.DBPort = &port
		changed = true
	}
	return changed
}
