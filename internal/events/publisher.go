// Package events publishes committed store mutations to the outside world.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/nats-io/nats.go"
)

// Publisher delivers one mutation event
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close()
}

// NATSPublisher sends events as JSON to <prefix>.<entity>.<type>
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("shutdown-manager"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithField("error", fmt.Sprint(err)).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the full subject an event is published on
func (p *NATSPublisher) Subject(event models.Event) string {
	return Subject(p.prefix, event)
}

// Publish implements Publisher
func (p *NATSPublisher) Publish(ctx context.Context, event models.Event) error {
	if p.nc == nil || p.nc.IsClosed() {
		return fmt.Errorf("nats not connected")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.nc.Publish(p.Subject(event), payload)
}

// Close flushes pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct {
	prefix string
}

// NewLogPublisher creates a new log publisher
func NewLogPublisher(prefix string) *LogPublisher {
	return &LogPublisher{prefix: prefix}
}

// Publish implements Publisher
func (p *LogPublisher) Publish(ctx context.Context, event models.Event) error {
	logger.WithFields(map[string]interface{}{
		"subject":  Subject(p.prefix, event),
		"id":       event.Id,
		"key":      event.Key,
		"status":   event.Status,
		"revision": event.Revision,
	}).Info("Mutation event")
	return nil
}

// Close implements Publisher
func (p *LogPublisher) Close() {}

// Subject joins the prefix and the event's own subject
func Subject(prefix string, event models.Event) string {
	if prefix == "" {
		return event.Subject()
	}
	return prefix + "." + event.Subject()
}

// Handler adapts a Publisher to a queue worker handler
func Handler(ctx context.Context, p Publisher) func(models.Event) error {
	return func(event models.Event) error {
		return p.Publish(ctx, event)
	}
}
