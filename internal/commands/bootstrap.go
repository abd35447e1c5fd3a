package commands

import (
	"context"
	"fmt"

	"github.com/imyashkale/shutdownmanager/internal/config"
	"github.com/imyashkale/shutdownmanager/internal/database"
	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/repository"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// backendRepos is an opened storage backend
type backendRepos struct {
	apps    repository.ApplicationRepository
	servers repository.ServerRepository
	close   func()
}

// openBackend builds the repositories selected by STORE_BACKEND
func openBackend(ctx context.Context, c *config.Config) (*backendRepos, error) {
	switch c.StoreBackend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, data is lost on exit")
		return &backendRepos{
			apps:    repository.NewMemoryApplicationRepository(),
			servers: repository.NewMemoryServerRepository(),
			close:   func() {},
		}, nil

	case config.BackendDynamoDB:
		dbConfig := database.NewConfig(c)
		logger.WithFields(map[string]interface{}{
			"applications_table": dbConfig.ApplicationsTable,
			"servers_table":      dbConfig.ServersTable,
			"region":             dbConfig.Region,
		}).Info("Initializing DynamoDB client")

		client, err := database.NewClient(ctx, dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DynamoDB client: %w", err)
		}
		return &backendRepos{
			apps:    repository.NewApplicationRepository(database.NewApplicationOperations(client, dbConfig.ApplicationsTable)),
			servers: repository.NewServerRepository(database.NewServerOperations(client, dbConfig.ServersTable)),
			close:   func() {},
		}, nil

	case config.BackendBadger:
		db, err := database.NewBadgerDB(c.BadgerPath)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", c.BadgerPath).Info("Badger storage opened")
		return &backendRepos{
			apps:    repository.NewBadgerApplicationRepository(db),
			servers: repository.NewBadgerServerRepository(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.WithField("error", err.Error()).Error("Failed to close badger")
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StoreBackend)
	}
}

// openStore opens the backend and loads the entity store from it
func openStore(ctx context.Context, c *config.Config, opts ...store.Option) (*store.Store, func(), error) {
	repos, err := openBackend(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(ctx, repos.apps, repos.servers, opts...)
	if err != nil {
		repos.close()
		return nil, nil, err
	}
	return s, repos.close, nil
}
