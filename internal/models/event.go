package models

import "time"

// EventType names the kind of committed mutation
type EventType string

const (
	EventCreated       EventType = "created"
	EventUpdated       EventType = "updated"
	EventStatusChanged EventType = "status_changed"
	EventDeleted       EventType = "deleted"
)

// Event is emitted by the store once a mutation has been committed
type Event struct {
	Type     EventType  `json:"type"`
	Entity   EntityType `json:"entity"`
	Id       string     `json:"id"`
	Key      string     `json:"key"` // name or hostname at the time of the event
	Status   string     `json:"status,omitempty"`
	Revision uint64     `json:"revision"`
	At       time.Time  `json:"at"`
}

// Subject returns the routing suffix for the event, e.g. "application.created"
func (e Event) Subject() string {
	return string(e.Entity) + "." + string(e.Type)
}
