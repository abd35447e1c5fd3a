package services

import (
	"sync"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// FleetStats is the readiness view served by the stats endpoint. Server
// progress is reported next to, not inside, the application aggregate.
type FleetStats struct {
	Applications lifecycle.Summary `json:"applications"`
	Servers      lifecycle.Summary `json:"servers"`
	Revision     uint64            `json:"revision"`
}

// FleetService is the read side over the store
type FleetService struct {
	store *store.Store

	mu     sync.Mutex
	cached *FleetStats
}

// NewFleetService creates a new fleet service
func NewFleetService(s *store.Store) *FleetService {
	return &FleetService{store: s}
}

// Stats returns the aggregate counts, recomputing them only after the store
// revision moved
func (fs *FleetService) Stats() FleetStats {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.cached != nil && fs.cached.Revision == fs.store.Revision() {
		return *fs.cached
	}

	snap := fs.store.Snapshot()
	appStatuses := make([]lifecycle.Status, 0, len(snap.Applications))
	for _, app := range snap.Applications {
		appStatuses = append(appStatuses, app.Status)
	}
	serverStatuses := make([]lifecycle.Status, 0, len(snap.Servers))
	for _, srv := range snap.Servers {
		serverStatuses = append(serverStatuses, srv.Status)
	}

	fs.cached = &FleetStats{
		Applications: lifecycle.Tally(appStatuses),
		Servers:      lifecycle.Tally(serverStatuses),
		Revision:     snap.Revision,
	}
	return *fs.cached
}

// Summary is the fleet-readiness aggregate over applications
func (fs *FleetService) Summary() lifecycle.Summary {
	return fs.Stats().Applications
}

// ServerSummary counts server statuses
func (fs *FleetService) ServerSummary() lifecycle.Summary {
	return fs.Stats().Servers
}

// VerifiedCount returns how many applications are shutdown_verified
func (fs *FleetService) VerifiedCount() int {
	return fs.Summary().Verified
}

// PendingCount returns how many applications are not yet verified
func (fs *FleetService) PendingCount() int {
	return fs.Summary().Pending
}

// ApplicationNameFor resolves a server's application reference. Unset and
// dangling references both resolve to models.UnknownApplicationName.
func (fs *FleetService) ApplicationNameFor(appId *string) string {
	if appId == nil {
		return models.UnknownApplicationName
	}
	app, err := fs.store.GetApplication(*appId)
	if err != nil {
		return models.UnknownApplicationName
	}
	return app.Name
}

// ListApplications returns every application with its servers embedded
func (fs *FleetService) ListApplications() []models.ApplicationResponse {
	snap := fs.store.Snapshot()
	names := applicationNames(snap.Applications)

	byApp := make(map[string][]models.ServerResponse)
	for _, srv := range snap.Servers {
		if srv.AppId == nil {
			continue
		}
		byApp[*srv.AppId] = append(byApp[*srv.AppId], srv.ToResponse(names.lookup(srv.AppId)))
	}

	out := make([]models.ApplicationResponse, 0, len(snap.Applications))
	for _, app := range snap.Applications {
		out = append(out, app.ToResponse(byApp[app.Id]))
	}
	return out
}

// ListServers returns every server with its application name resolved
func (fs *FleetService) ListServers() []models.ServerResponse {
	snap := fs.store.Snapshot()
	names := applicationNames(snap.Applications)

	out := make([]models.ServerResponse, 0, len(snap.Servers))
	for _, srv := range snap.Servers {
		out = append(out, srv.ToResponse(names.lookup(srv.AppId)))
	}
	return out
}

// ApplicationView returns one application with its servers
func (fs *FleetService) ApplicationView(id string) (models.ApplicationResponse, error) {
	snap := fs.store.Snapshot()
	for _, app := range snap.Applications {
		if app.Id != id {
			continue
		}
		servers := make([]models.ServerResponse, 0)
		for _, srv := range snap.Servers {
			if srv.AppId != nil && *srv.AppId == id {
				servers = append(servers, srv.ToResponse(app.Name))
			}
		}
		return app.ToResponse(servers), nil
	}
	return models.ApplicationResponse{}, &store.NotFoundError{Entity: models.EntityApplication, Id: id}
}

// ServerView returns one server with its application name resolved
func (fs *FleetService) ServerView(id string) (models.ServerResponse, error) {
	srv, err := fs.store.GetServer(id)
	if err != nil {
		return models.ServerResponse{}, err
	}
	return srv.ToResponse(fs.ApplicationNameFor(srv.AppId)), nil
}

type nameIndex map[string]string

func applicationNames(apps []*models.Application) nameIndex {
	idx := make(nameIndex, len(apps))
	for _, app := range apps {
		idx[app.Id] = app.Name
	}
	return idx
}

func (idx nameIndex) lookup(appId *string) string {
	if appId == nil {
		return models.UnknownApplicationName
	}
	if name, ok := idx[*appId]; ok {
		return name
	}
	return models.UnknownApplicationName
}
