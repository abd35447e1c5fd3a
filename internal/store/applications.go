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

// CreateApplication registers a new application with status active. A name
// that is already taken yields a *ConflictError.
func (s *Store) CreateApplication(ctx context.Context, f models.ApplicationFields) (*models.Application, error) {
	f.Name = strings.TrimSpace(f.Name)
	if err := s.validate.Struct(f); err != nil {
		return nil, validationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.appNames[f.Name]; taken {
		return nil, &ConflictError{Entity: models.EntityApplication, Field: "name", Key: f.Name}
	}

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &models.Application{
		Id:        id,
		Name:      f.Name,
		Owner:     f.Owner,
		WebUI:     f.WebUI,
		DBPort:    f.DBPort,
		CreatedAt: now,
		UpdatedAt: now,
	}
	app.SetStatus(lifecycle.Initial)

	if err := s.appRepo.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to persist application %q: %w", app.Name, err)
	}

	s.apps[app.Id] = app.Clone()
	s.appOrder = append(s.appOrder, app.Id)
	s.appNames[app.Name] = app.Id
	s.commit(models.EventCreated, models.EntityApplication, app.Id, app.Name, app.Status)

	logger.WithFields(map[string]interface{}{
		"application_id": app.Id,
		"name":           app.Name,
	}).Info("Application created")

	return app.Clone(), nil
}

// UpdateApplication applies a field patch. Status is never touched. The
// returned flag is false when the patch matched the stored values; no
// revision is consumed in that case.
func (s *Store) UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, bool, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, false, validationError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.apps[id]
	if !ok {
		return nil, false, &NotFoundError{Entity: models.EntityApplication, Id: id}
	}

	next := current.Clone()
	if !patch.Apply(next) {
		return next, false, nil
	}

	if next.Name != current.Name {
		if _, taken := s.appNames[next.Name]; taken {
			return nil, false, &ConflictError{Entity: models.EntityApplication, Field: "name", Key: next.Name}
		}
	}

	next.UpdatedAt = s.now()
	if err := s.appRepo.Save(ctx, next); err != nil {
		return nil, false, fmt.Errorf("failed to persist application %q: %w", id, err)
	}

	if next.Name != current.Name {
		delete(s.appNames, current.Name)
		s.appNames[next.Name] = id
	}
	s.apps[id] = next
	s.commit(models.EventUpdated, models.EntityApplication, id, next.Name, next.Status)

	return next.Clone(), true, nil
}

// UpdateApplicationStatus moves an application along the shutdown lifecycle.
// Regressive transitions fail with *IllegalTransitionError and leave the
// record untouched; a same-state request is a no-op.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id string, status lifecycle.Status) (*models.Application, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.apps[id]
	if !ok {
		return nil, &NotFoundError{Entity: models.EntityApplication, Id: id}
	}

	if err := lifecycle.CheckTransition(current.Status, status); err != nil {
		var ite *lifecycle.IllegalTransitionError
		if errors.As(err, &ite) {
			ite.Entity = string(models.EntityApplication)
			ite.Id = id
		}
		logger.WithFields(map[string]interface{}{
			"application_id": id,
			"from":           current.Status,
			"to":             status,
		}).Warn("Rejected regressive status transition")
		return nil, err
	}
	if current.Status == status {
		return current.Clone(), nil
	}

	next := current.Clone()
	next.SetStatus(status)
	next.UpdatedAt = s.now()
	if err := s.appRepo.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist application %q: %w", id, err)
	}

	s.apps[id] = next
	s.commit(models.EventStatusChanged, models.EntityApplication, id, next.Name, next.Status)

	logger.WithFields(map[string]interface{}{
		"application_id": id,
		"from":           current.Status,
		"to":             status,
	}).Info("Application status updated")

	return next.Clone(), nil
}

// DeleteApplication removes an application. Servers that referenced it keep
// their now dangling AppId.
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return &NotFoundError{Entity: models.EntityApplication, Id: id}
	}

	if err := s.appRepo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete application %q: %w", id, err)
	}

	delete(s.apps, id)
	delete(s.appNames, app.Name)
	s.appOrder = removeID(s.appOrder, id)
	s.commit(models.EventDeleted, models.EntityApplication, id, app.Name, app.Status)

	return nil
}

// GetApplication returns a copy of one application
func (s *Store) GetApplication(id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, &NotFoundError{Entity: models.EntityApplication, Id: id}
	}
	return app.Clone(), nil
}

// ApplicationByName looks an application up by its natural key
func (s *Store) ApplicationByName(name string) (*models.Application, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.appNames[name]
	if !ok {
		return nil, false
	}
	return s.apps[id].Clone(), true
}

// ListApplications returns copies of every application in creation order
func (s *Store) ListApplications() []*models.Application {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listApplications()
}

func (s *Store) listApplications() []*models.Application {
	out := make([]*models.Application, 0, len(s.appOrder))
	for _, id := range s.appOrder {
		out = append(out, s.apps[id].Clone())
	}
	return out
}
