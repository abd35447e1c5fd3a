package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/repository"
	"github.com/imyashkale/shutdownmanager/internal/services"
	"github.com/imyashkale/shutdownmanager/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestFleetGauges(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(ctx, repository.NewMemoryApplicationRepository(), repository.NewMemoryServerRepository())
	require.NoError(t, err)
	m := New(services.NewFleetService(s))

	app, err := s.CreateApplication(ctx, models.ApplicationFields{Name: "billing"})
	require.NoError(t, err)
	_, err = s.UpdateApplicationStatus(ctx, app.Id, lifecycle.ShutdownVerified)
	require.NoError(t, err)
	_, err = s.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	body := scrape(t, m)
	assert.Contains(t, body, `shutdown_manager_entities{entity="application",status="shutdown_verified"} 1`)
	assert.Contains(t, body, `shutdown_manager_entities{entity="application",status="active"} 0`)
	assert.Contains(t, body, `shutdown_manager_entities{entity="server",status="active"} 1`)
	assert.Contains(t, body, "shutdown_manager_store_revision 3")
}

func TestImportCounters(t *testing.T) {
	s, err := store.New(context.Background(), repository.NewMemoryApplicationRepository(), repository.NewMemoryServerRepository())
	require.NoError(t, err)
	m := New(services.NewFleetService(s))

	m.ObserveImport(&models.ImportResult{Entity: models.EntityApplication, Created: 2, Rejected: 1})
	m.ObserveImport(&models.ImportResult{Entity: models.EntityApplication, Created: 1})

	body := scrape(t, m)
	assert.Contains(t, body, `shutdown_manager_import_rows_total{entity="application",outcome="created"} 3`)
	assert.Contains(t, body, `shutdown_manager_import_rows_total{entity="application",outcome="rejected"} 1`)
}
