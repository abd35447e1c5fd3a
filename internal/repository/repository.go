package repository

import (
	"context"

	"github.com/imyashkale/shutdownmanager/internal/database"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

// Re-export errors from database package
var (
	ErrNotFound = database.ErrNotFound
)

// ApplicationRepository defines the persistence operations for applications
type ApplicationRepository interface {
	Save(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*models.Application, error)
}

// ServerRepository defines the persistence operations for servers
type ServerRepository interface {
	Save(ctx context.Context, srv *models.Server) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*models.Server, error)
}

// dynamoApplicationRepository implements ApplicationRepository using DynamoDB
type dynamoApplicationRepository struct {
	db *database.ApplicationOperations
}

// NewApplicationRepository creates a new DynamoDB-backed application repository
func NewApplicationRepository(db *database.ApplicationOperations) ApplicationRepository {
	return &dynamoApplicationRepository{db: db}
}

func (r *dynamoApplicationRepository) Save(ctx context.Context, app *models.Application) error {
	return r.db.PutApplication(ctx, app)
}

func (r *dynamoApplicationRepository) Delete(ctx context.Context, id string) error {
	return r.db.DeleteApplication(ctx, id)
}

func (r *dynamoApplicationRepository) GetAll(ctx context.Context) ([]*models.Application, error) {
	return r.db.GetAllApplications(ctx)
}

// dynamoServerRepository implements ServerRepository using DynamoDB
type dynamoServerRepository struct {
	db *database.ServerOperations
}

// NewServerRepository creates a new DynamoDB-backed server repository
func NewServerRepository(db *database.ServerOperations) ServerRepository {
	return &dynamoServerRepository{db: db}
}

func (r *dynamoServerRepository) Save(ctx context.Context, srv *models.Server) error {
	return r.db.PutServer(ctx, srv)
}

func (r *dynamoServerRepository) Delete(ctx context.Context, id string) error {
	return r.db.DeleteServer(ctx, id)
}

func (r *dynamoServerRepository) GetAll(ctx context.Context) ([]*models.Server, error) {
	return r.db.GetAllServers(ctx)
}
