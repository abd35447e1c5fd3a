package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/imyashkale/shutdownmanager/internal/models"
)

// MemoryApplicationRepository keeps applications in process memory. Nothing
// survives a restart; it backs tests and the "memory" store backend.
type MemoryApplicationRepository struct {
	mu    sync.Mutex
	items map[string]*models.Application
	// Err, when set, is returned by every write
	Err error
}

// NewMemoryApplicationRepository creates an empty in-memory application repository
func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{items: make(map[string]*models.Application)}
}

func (r *MemoryApplicationRepository) Save(ctx context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.items[app.Id] = app.Clone()
	return nil
}

func (r *MemoryApplicationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Application, 0, len(r.items))
	for _, app := range r.items {
		out = append(out, app.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

// MemoryServerRepository keeps servers in process memory
type MemoryServerRepository struct {
	mu    sync.Mutex
	items map[string]*models.Server
	// Err, when set, is returned by every write
	Err error
}

// NewMemoryServerRepository creates an empty in-memory server repository
func NewMemoryServerRepository() *MemoryServerRepository {
	return &MemoryServerRepository{items: make(map[string]*models.Server)}
}

func (r *MemoryServerRepository) Save(ctx context.Context, srv *models.Server) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.items[srv.Id] = srv.Clone()
	return nil
}

func (r *MemoryServerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryServerRepository) GetAll(ctx context.Context) ([]*models.Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Server, 0, len(r.items))
	for _, srv := range r.items {
		out = append(out, srv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}
