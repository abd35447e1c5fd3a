// Package store is the authoritative keyed storage for applications and
// servers. It keeps an in-memory index over a repository, enforces unique
// ids and natural keys, checks application references and status
// transitions, and counts committed mutations in a revision number.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/repository"
)

// Notifier receives an event after every committed mutation. Notify is
// called with the store lock held and must not block.
type Notifier interface {
	Notify(event models.Event)
}

// Option configures a Store
type Option func(*Store)

// WithNotifier registers a receiver for mutation events
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id generator (uuid v4 by default)
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Snapshot is a consistent view of the store at one revision
type Snapshot struct {
	Revision     uint64
	Applications []*models.Application
	Servers      []*models.Server
}

// Store holds every application and server. All mutations are serialized.
type Store struct {
	mu sync.RWMutex

	appRepo    repository.ApplicationRepository
	serverRepo repository.ServerRepository

	apps     map[string]*models.Application
	appOrder []string
	appNames map[string]string // name -> id

	servers     map[string]*models.Server
	serverOrder []string
	hostnames   map[string]string // hostname -> id

	issued   map[string]struct{} // every id handed out, including deleted ones
	revision uint64

	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// New loads every persisted record from the repositories and returns a ready store
func New(ctx context.Context, appRepo repository.ApplicationRepository, serverRepo repository.ServerRepository, opts ...Option) (*Store, error) {
	s := &Store{
		appRepo:    appRepo,
		serverRepo: serverRepo,
		apps:       make(map[string]*models.Application),
		appNames:   make(map[string]string),
		servers:    make(map[string]*models.Server),
		hostnames:  make(map[string]string),
		issued:     make(map[string]struct{}),
		validate:   newValidator(),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"applications": len(s.apps),
		"servers":      len(s.servers),
	}).Info("Entity store loaded")

	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	apps, err := s.appRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load applications: %w", err)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].Id < apps[j].Id
		}
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
	for _, app := range apps {
		if _, dup := s.appNames[app.Name]; dup {
			return fmt.Errorf("duplicate application name %q in storage", app.Name)
		}
		s.apps[app.Id] = app
		s.appOrder = append(s.appOrder, app.Id)
		s.appNames[app.Name] = app.Id
		s.issued[app.Id] = struct{}{}
	}

	servers, err := s.serverRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load servers: %w", err)
	}
	sort.SliceStable(servers, func(i, j int) bool {
		if servers[i].CreatedAt.Equal(servers[j].CreatedAt) {
			return servers[i].Id < servers[j].Id
		}
		return servers[i].CreatedAt.Before(servers[j].CreatedAt)
	})
	for _, srv := range servers {
		if _, dup := s.hostnames[srv.Hostname]; dup {
			return fmt.Errorf("duplicate server hostname %q in storage", srv.Hostname)
		}
		s.servers[srv.Id] = srv
		s.serverOrder = append(s.serverOrder, srv.Id)
		s.hostnames[srv.Hostname] = srv.Id
		s.issued[srv.Id] = struct{}{}
	}

	return nil
}

// Revision returns the number of mutations committed since the store was opened
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Snapshot returns copies of every record together with the revision they belong to
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Revision:     s.revision,
		Applications: s.listApplications(),
		Servers:      s.listServers(),
	}
}

// UpdateStatus moves an application or server along the shutdown lifecycle
func (s *Store) UpdateStatus(ctx context.Context, entity models.EntityType, id string, status lifecycle.Status) error {
	switch entity {
	case models.EntityApplication:
		_, err := s.UpdateApplicationStatus(ctx, id, status)
		return err
	case models.EntityServer:
		_, err := s.UpdateServerStatus(ctx, id, status)
		return err
	default:
		return &ValidationError{Field: "entity", Message: fmt.Sprintf("unknown entity type %q", entity)}
	}
}

// nextID returns an id that has never been issued by this store
func (s *Store) nextID() (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		id := s.newID()
		if _, used := s.issued[id]; !used && id != "" {
			s.issued[id] = struct{}{}
			return id, nil
		}
	}
	return "", fmt.Errorf("id generator keeps returning issued ids")
}

// commit bumps the revision and emits the event. Callers hold s.mu.
func (s *Store) commit(typ models.EventType, entity models.EntityType, id, key string, status lifecycle.Status) {
	s.revision++
	event := models.Event{
		Type:     typ,
		Entity:   entity,
		Id:       id,
		Key:      key,
		Status:   string(status),
		Revision: s.revision,
		At:       s.now(),
	}

	logger.WithFields(map[string]interface{}{
		"event":    typ,
		"entity":   entity,
		"id":       id,
		"key":      key,
		"revision": s.revision,
	}).Debug("Mutation committed")

	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
