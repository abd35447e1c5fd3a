package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []models.Event
}

func (r *recordingNotifier) Notify(e models.Event) {
	r.events = append(r.events, e)
}

type fixture struct {
	store    *Store
	apps     *repository.MemoryApplicationRepository
	servers  *repository.MemoryServerRepository
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		apps:     repository.NewMemoryApplicationRepository(),
		servers:  repository.NewMemoryServerRepository(),
		notifier: &recordingNotifier{},
	}
	f.store = f.open(t)
	return f
}

// open builds a store over the fixture's repositories with a deterministic clock and ids
func (f *fixture) open(t *testing.T) *Store {
	t.Helper()
	seq := 0
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := New(context.Background(), f.apps, f.servers,
		WithNotifier(f.notifier),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d-%d", time.Now().UnixNano(), seq)
		}),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	require.NoError(t, err)
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateApplicationDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: " svc-a ", Owner: "bob", DBPort: intPtr(5432)})
	require.NoError(t, err)

	assert.NotEmpty(t, app.Id)
	assert.Equal(t, "svc-a", app.Name)
	assert.Equal(t, lifecycle.Active, app.Status)
	assert.False(t, app.ShutdownVerified)
	assert.Equal(t, uint64(1), f.store.Revision())

	persisted, err := f.apps.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, app.Id, persisted[0].Id)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, models.EventCreated, f.notifier.events[0].Type)
	assert.Equal(t, uint64(1), f.notifier.events[0].Revision)
}

func TestCreateApplicationConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc-a"})
	require.NoError(t, err)

	_, err = f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc-a"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "svc-a", conflict.Key)

	// names are case-sensitive
	_, err = f.store.CreateApplication(ctx, models.ApplicationFields{Name: "SVC-A"})
	require.NoError(t, err)

	assert.Len(t, f.store.ListApplications(), 2)
	assert.Equal(t, uint64(2), f.store.Revision())
}

func TestCreateApplicationValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields models.ApplicationFields
		field  string
	}{
		{"empty name", models.ApplicationFields{Name: ""}, "name"},
		{"blank name", models.ApplicationFields{Name: "   "}, "name"},
		{"port zero", models.ApplicationFields{Name: "a", DBPort: intPtr(0)}, "db_port"},
		{"port too large", models.ApplicationFields{Name: "a", DBPort: intPtr(70000)}, "db_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.store.CreateApplication(context.Background(), tt.fields)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Zero(t, f.store.Revision())
		})
	}
}

func TestCreateServerApplicationReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "billing"})
	require.NoError(t, err)

	srv, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "billing-01", IPAddress: "10.0.0.1", AppId: &app.Id})
	require.NoError(t, err)
	require.NotNil(t, srv.AppId)
	assert.Equal(t, app.Id, *srv.AppId)
	assert.Equal(t, lifecycle.Active, srv.Status)
	assert.True(t, srv.PingStatus, "new servers are assumed reachable")

	_, err = f.store.CreateServer(ctx, models.ServerFields{Hostname: "orphan-01", IPAddress: "10.0.0.2", AppId: strPtr("missing")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "app_id", ve.Field)

	orphan, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "orphan-01", IPAddress: "10.0.0.2", AppId: strPtr("missing")}, AllowUnassigned())
	require.NoError(t, err)
	assert.Nil(t, orphan.AppId)

	blank, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "spare-01", IPAddress: "::1", AppId: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, blank.AppId)
}

func TestCreateServerValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields models.ServerFields
		field  string
	}{
		{"missing hostname", models.ServerFields{IPAddress: "10.0.0.1"}, "hostname"},
		{"missing ip", models.ServerFields{Hostname: "h1"}, "ip_address"},
		{"bad ip", models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.300"}, "ip_address"},
		{"hostname instead of ip", models.ServerFields{Hostname: "h1", IPAddress: "db.internal"}, "ip_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.store.CreateServer(context.Background(), tt.fields)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSharedIPAddressesAreAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "old-01", IPAddress: "10.0.0.9"})
	require.NoError(t, err)
	_, err = f.store.CreateServer(ctx, models.ServerFields{Hostname: "new-01", IPAddress: "10.0.0.9"})
	require.NoError(t, err)

	_, err = f.store.CreateServer(ctx, models.ServerFields{Hostname: "new-01", IPAddress: "10.0.0.10"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	rev := f.store.Revision()

	updated, err := f.store.UpdateApplicationStatus(ctx, app.Id, lifecycle.ShutdownPending)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.ShutdownPending, updated.Status)
	assert.Equal(t, rev+1, f.store.Revision())

	// same-state is a legal no-op that does not consume a revision
	_, err = f.store.UpdateApplicationStatus(ctx, app.Id, lifecycle.ShutdownPending)
	require.NoError(t, err)
	assert.Equal(t, rev+1, f.store.Revision())

	updated, err = f.store.UpdateApplicationStatus(ctx, app.Id, lifecycle.ShutdownVerified)
	require.NoError(t, err)
	assert.True(t, updated.ShutdownVerified)

	_, err = f.store.UpdateApplicationStatus(ctx, app.Id, lifecycle.Active)
	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, lifecycle.ShutdownVerified, ite.From)
	assert.Equal(t, lifecycle.Active, ite.To)
	assert.Equal(t, app.Id, ite.Id)

	current, err := f.store.GetApplication(app.Id)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.ShutdownVerified, current.Status)
	assert.Equal(t, rev+2, f.store.Revision())
}

func TestStatusIsMonotonicAcrossRandomRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	srv, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	requests := []lifecycle.Status{
		lifecycle.ShutdownPending, lifecycle.Active, lifecycle.ShutdownPending,
		lifecycle.ShutdownVerified, lifecycle.ShutdownPending, lifecycle.Active,
	}
	last := lifecycle.Rank(srv.Status)
	for _, next := range requests {
		_ = f.store.UpdateStatus(ctx, models.EntityServer, srv.Id, next)
		got, err := f.store.GetServer(srv.Id)
		require.NoError(t, err)
		require.GreaterOrEqual(t, lifecycle.Rank(got.Status), last)
		last = lifecycle.Rank(got.Status)
	}
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var nf *NotFoundError
	require.ErrorAs(t, f.store.UpdateStatus(ctx, models.EntityApplication, "nope", lifecycle.ShutdownPending), &nf)
	assert.Equal(t, models.EntityApplication, nf.Entity)

	require.ErrorAs(t, f.store.UpdateStatus(ctx, models.EntityServer, "nope", lifecycle.ShutdownPending), &nf)
	assert.Equal(t, models.EntityServer, nf.Entity)

	var ve *ValidationError
	assert.ErrorAs(t, f.store.UpdateStatus(ctx, models.EntityType("rack"), "x", lifecycle.Active), &ve)
	assert.ErrorAs(t, f.store.UpdateStatus(ctx, models.EntityApplication, "x", lifecycle.Status("gone")), &ve)
}

func TestUpdateApplicationPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc-a", Owner: "bob"})
	require.NoError(t, err)
	_, err = f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc-b"})
	require.NoError(t, err)
	_, err = f.store.UpdateApplicationStatus(ctx, a.Id, lifecycle.ShutdownPending)
	require.NoError(t, err)
	rev := f.store.Revision()

	_, changed, err := f.store.UpdateApplication(ctx, a.Id, models.ApplicationPatch{Owner: strPtr("bob")})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, rev, f.store.Revision())

	updated, changed, err := f.store.UpdateApplication(ctx, a.Id, models.ApplicationPatch{Owner: strPtr("alice")})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "alice", updated.Owner)
	assert.Equal(t, lifecycle.ShutdownPending, updated.Status, "field updates never touch status")

	_, _, err = f.store.UpdateApplication(ctx, a.Id, models.ApplicationPatch{Name: strPtr("svc-b")})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	renamed, _, err := f.store.UpdateApplication(ctx, a.Id, models.ApplicationPatch{Name: strPtr("svc-renamed")})
	require.NoError(t, err)
	assert.Equal(t, "svc-renamed", renamed.Name)

	_, found := f.store.ApplicationByName("svc-a")
	assert.False(t, found)
	byName, found := f.store.ApplicationByName("svc-renamed")
	require.True(t, found)
	assert.Equal(t, a.Id, byName.Id)
}

func TestUpdateServerPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	srv, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	_, _, err = f.store.UpdateServer(ctx, srv.Id, models.ServerPatch{AppId: strPtr("missing")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, _, err = f.store.UpdateServer(ctx, srv.Id, models.ServerPatch{IPAddress: strPtr("not-an-ip")})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ip_address", ve.Field)

	updated, changed, err := f.store.UpdateServer(ctx, srv.Id, models.ServerPatch{AppId: &app.Id})
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, updated.AppId)

	updated, changed, err = f.store.UpdateServer(ctx, srv.Id, models.ServerPatch{UnassignApp: true})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, updated.AppId)
}

func TestDeleteApplicationLeavesDanglingReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	srv, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1", AppId: &app.Id})
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteApplication(ctx, app.Id))

	got, err := f.store.GetServer(srv.Id)
	require.NoError(t, err)
	require.NotNil(t, got.AppId)
	assert.Equal(t, app.Id, *got.AppId)

	var nf *NotFoundError
	assert.ErrorAs(t, f.store.DeleteApplication(ctx, app.Id), &nf)

	// the name is free again but the id is never reissued
	again, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	assert.NotEqual(t, app.Id, again.Id)

	require.NoError(t, f.store.DeleteServer(ctx, srv.Id))
	assert.Empty(t, f.store.ListServers())
}

func TestRepositoryFailureLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	rev := f.store.Revision()

	boom := errors.New("disk full")
	f.apps.Err = boom

	_, err = f.store.CreateApplication(ctx, models.ApplicationFields{Name: "other"})
	assert.ErrorIs(t, err, boom)

	_, err = f.store.UpdateApplicationStatus(ctx, app.Id, lifecycle.ShutdownVerified)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, rev, f.store.Revision())
	assert.Len(t, f.store.ListApplications(), 1)
	got, err := f.store.GetApplication(app.Id)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Active, got.Status)

	// the store stays usable once the backend recovers
	f.apps.Err = nil
	_, err = f.store.CreateApplication(ctx, models.ApplicationFields{Name: "other"})
	require.NoError(t, err)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc", DBPort: intPtr(80)})
	require.NoError(t, err)
	app.Name = "hijacked"
	*app.DBPort = 1

	got, err := f.store.GetApplication(app.Id)
	require.NoError(t, err)
	assert.Equal(t, "svc", got.Name)
	assert.Equal(t, 80, *got.DBPort)
}

func TestReloadPreservesOrderAndKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: name})
		require.NoError(t, err)
	}
	_, err := f.store.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	reopened := f.open(t)
	names := make([]string, 0)
	for _, app := range reopened.ListApplications() {
		names = append(names, app.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
	assert.Zero(t, reopened.Revision())

	_, err = reopened.CreateApplication(ctx, models.ApplicationFields{Name: "alpha"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, found := reopened.ServerByHostname("h1")
	assert.True(t, found)
}

func TestSnapshotIsConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.CreateApplication(ctx, models.ApplicationFields{Name: "svc"})
	require.NoError(t, err)
	_, err = f.store.CreateServer(ctx, models.ServerFields{Hostname: "h1", IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	snap := f.store.Snapshot()
	assert.Equal(t, uint64(2), snap.Revision)
	assert.Len(t, snap.Applications, 1)
	assert.Len(t, snap.Servers, 1)
}
