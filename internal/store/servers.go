package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/repository"
)

// CreateOption tunes a single CreateServer call
type CreateOption func(*createOptions)

type createOptions struct {
	allowUnassigned bool
}

// AllowUnassigned stores the server with no application instead of failing
// when its AppId does not resolve
func AllowUnassigned() CreateOption {
	return func(o *createOptions) { o.allowUnassigned = true }
}

// CreateServer registers a new server with status active. A non-nil AppId
// must reference an existing application, otherwise *ValidationError is
// returned unless AllowUnassigned is given.
func (s *Store) CreateServer(ctx context.Context, f models.ServerFields, opts ...CreateOption) (*models.Server, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	f.Hostname = strings.TrimSpace(f.Hostname)
	f.IPAddress = strings.TrimSpace(f.IPAddress)
	if f.AppId != nil && strings.TrimSpace(*f.AppId) == "" {
		f.AppId = nil
	}
	if err := s.validate.Struct(f); err != nil {
		return nil, validationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.hostnames[f.Hostname]; taken {
		return nil, &ConflictError{Entity: models.EntityServer, Field: "hostname", Key: f.Hostname}
	}

	var appId *string
	if f.AppId != nil {
		if _, ok := s.apps[*f.AppId]; ok {
			id := *f.AppId
			appId = &id
		} else if !o.allowUnassigned {
			return nil, &ValidationError{Field: "app_id", Message: fmt.Sprintf("application %q not found", *f.AppId)}
		}
	}

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	srv := &models.Server{
		Id:         id,
		Hostname:   f.Hostname,
		IPAddress:  f.IPAddress,
		AppId:      appId,
		Status:     lifecycle.Initial,
		PingStatus: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.serverRepo.Save(ctx, srv); err != nil {
		return nil, fmt.Errorf("failed to persist server %q: %w", srv.Hostname, err)
	}

	s.servers[srv.Id] = srv
	s.serverOrder = append(s.serverOrder, srv.Id)
	s.hostnames[srv.Hostname] = srv.Id
	s.commit(models.EventCreated, models.EntityServer, srv.Id, srv.Hostname, srv.Status)

	logger.WithFields(map[string]interface{}{
		"server_id": srv.Id,
		"hostname":  srv.Hostname,
	}).Info("Server created")

	return srv.Clone(), nil
}

// UpdateServer applies a field patch. Status is never touched. A new AppId
// must resolve; UnassignApp clears the reference.
func (s *Store) UpdateServer(ctx context.Context, id string, patch models.ServerPatch) (*models.Server, bool, error) {
	if patch.Hostname != nil {
		hostname := strings.TrimSpace(*patch.Hostname)
		patch.Hostname = &hostname
	}
	if patch.IPAddress != nil {
		ip := strings.TrimSpace(*patch.IPAddress)
		patch.IPAddress = &ip
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, false, validationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.servers[id]
	if !ok {
		return nil, false, &NotFoundError{Entity: models.EntityServer, Id: id}
	}

	if patch.AppId != nil && !patch.UnassignApp {
		if _, ok := s.apps[*patch.AppId]; !ok {
			return nil, false, &ValidationError{Field: "app_id", Message: fmt.Sprintf("application %q not found", *patch.AppId)}
		}
	}

	next := current.Clone()
	if !patch.Apply(next) {
		return next, false, nil
	}

	if next.Hostname != current.Hostname {
		if _, taken := s.hostnames[next.Hostname]; taken {
			return nil, false, &ConflictError{Entity: models.EntityServer, Field: "hostname", Key: next.Hostname}
		}
	}

	next.UpdatedAt = s.now()
	if err := s.serverRepo.Save(ctx, next); err != nil {
		return nil, false, fmt.Errorf("failed to persist server %q: %w", id, err)
	}

	if next.Hostname != current.Hostname {
		delete(s.hostnames, current.Hostname)
		s.hostnames[next.Hostname] = id
	}
	s.servers[id] = next
	s.commit(models.EventUpdated, models.EntityServer, id, next.Hostname, next.Status)

	return next.Clone(), true, nil
}

// UpdateServerStatus moves a server along the shutdown lifecycle
func (s *Store) UpdateServerStatus(ctx context.Context, id string, status lifecycle.Status) (*models.Server, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.servers[id]
	if !ok {
		return nil, &NotFoundError{Entity: models.EntityServer, Id: id}
	}

	if err := lifecycle.CheckTransition(current.Status, status); err != nil {
		var ite *lifecycle.IllegalTransitionError
		if errors.As(err, &ite) {
			ite.Entity = string(models.EntityServer)
			ite.Id = id
		}
		logger.WithFields(map[string]interface{}{
			"server_id": id,
			"from":      current.Status,
			"to":        status,
		}).Warn("Rejected regressive status transition")
		return nil, err
	}
	if current.Status == status {
		return current.Clone(), nil
	}

	next := current.Clone()
	next.Status = status
	next.UpdatedAt = s.now()
	if err := s.serverRepo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist server %q: %w", id, err)
	}

	s.servers[id] = next
	s.commit(models.EventStatusChanged, models.EntityServer, id, next.Hostname, next.Status)

	logger.WithFields(map[string]interface{}{
		"server_id": id,
		"from":      current.Status,
		"to":        status,
	}).Info("Server status updated")

	return next.Clone(), nil
}

// DeleteServer removes a server
func (s *Store) DeleteServer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	srv, ok := s.servers[id]
	if !ok {
		return &NotFoundError{Entity: models.EntityServer, Id: id}
	}

	if err := s.serverRepo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete server %q: %w", id, err)
	}

	delete(s.servers, id)
	delete(s.hostnames, srv.Hostname)
	s.serverOrder = removeID(s.serverOrder, id)
	s.commit(models.EventDeleted, models.EntityServer, id, srv.Hostname, srv.Status)

	return nil
}

// GetServer returns a copy of one server
func (s *Store) GetServer(id string) (*models.Server, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	srv, ok := s.servers[id]
	if !ok {
		return nil, &NotFoundError{Entity: models.EntityServer, Id: id}
	}
	return srv.Clone(), nil
}

// ServerByHostname looks a server up by its natural key
func (s *Store) ServerByHostname(hostname string) (*models.Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.hostnames[hostname]
	if !ok {
		return nil, false
	}
	return s.servers[id].Clone(), true
}

// ListServers returns copies of every server in creation order
func (s *Store) ListServers() []*models.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listServers()
}

func (s *Store) listServers() []*models.Server {
	out := make([]*models.Server, 0, len(s.serverOrder))
	for _, id := range s.serverOrder {
		out = append(out, s.servers[id].Clone())
	}
	return out
}
