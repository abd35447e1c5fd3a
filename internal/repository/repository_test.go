package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/imyashkale/shutdownmanager/internal/database"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryApplicationRepositoryStoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryApplicationRepository()

	app := &models.Application{Id: "a1", Name: "billing"}
	require.NoError(t, repo.Save(ctx, app))
	app.Name = "mutated"

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "billing", all[0].Name)

	require.NoError(t, repo.Delete(ctx, "a1"))
	assert.ErrorIs(t, repo.Delete(ctx, "a1"), ErrNotFound)
}

func TestMemoryServerRepositoryInjectedError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryServerRepository()
	repo.Err = errors.New("disk full")

	err := repo.Save(ctx, &models.Server{Id: "s1"})
	assert.EqualError(t, err, "disk full")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBadgerRepositories(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewBadgerDB("")
	require.NoError(t, err)
	defer db.Close()

	apps := NewBadgerApplicationRepository(db)
	servers := NewBadgerServerRepository(db)

	require.NoError(t, apps.Save(ctx, &models.Application{Id: "a1", Name: "billing", Status: "active"}))
	require.NoError(t, servers.Save(ctx, &models.Server{Id: "s1", Hostname: "h1", IPAddress: "10.0.0.1", Status: "active"}))

	gotApps, err := apps.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotApps, 1)
	assert.Equal(t, "billing", gotApps[0].Name)

	gotServers, err := servers.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, gotServers, 1)

	assert.ErrorIs(t, apps.Delete(ctx, "missing"), ErrNotFound)
}
