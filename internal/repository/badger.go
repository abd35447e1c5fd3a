package repository

import (
	"context"

	"github.com/imyashkale/shutdownmanager/internal/database"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

type badgerApplicationRepository struct {
	db *database.BadgerDB
}

// NewBadgerApplicationRepository creates a Badger-backed application repository
func NewBadgerApplicationRepository(db *database.BadgerDB) ApplicationRepository {
	return &badgerApplicationRepository{db: db}
}

func (r *badgerApplicationRepository) Save(ctx context.Context, app *models.Application) error {
	return r.db.PutApplication(ctx, app)
}

func (r *badgerApplicationRepository) Delete(ctx context.Context, id string) error {
	return r.db.DeleteApplication(ctx, id)
}

func (r *badgerApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	return r.db.GetAllApplications(ctx)
}

type badgerServerRepository struct {
	db *database.BadgerDB
}

// NewBadgerServerRepository creates a Badger-backed server repository
func NewBadgerServerRepository(db *database.BadgerDB) ServerRepository {
	return &badgerServerRepository{db: db}
}

func (r *badgerServerRepository) Save(ctx context.Context, srv *models.Server) error {
	return r.db.PutServer(ctx, srv)
}

func (r *badgerServerRepository) Delete(ctx context.Context, id string) error {
	return r.db.DeleteServer(ctx, id)
}

func (r *badgerServerRepository) GetAll(ctx context.Context) ([]*models.Server, error) {
	return r.db.GetAllServers(ctx)
}
