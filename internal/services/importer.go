package services

import (
	"context"
	"errors"

	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/store"
)

// ImportObserver is told about every finished import
type ImportObserver interface {
	ObserveImport(result *models.ImportResult)
}

// ImportService reconciles bulk rows against the store. Rows are applied one
// at a time in input order; a bad row is reported and skipped, never rolled
// back into its neighbours.
type ImportService struct {
	store    *store.Store
	observer ImportObserver
}

// NewImportService creates a new import service. observer may be nil.
func NewImportService(s *store.Store, observer ImportObserver) *ImportService {
	return &ImportService{
		store:    s,
		observer: observer,
	}
}

// ImportApplications creates or updates applications matched by name
func (is *ImportService) ImportApplications(ctx context.Context, rows []models.Record) *models.ImportResult {
	result := models.NewImportResult(models.EntityApplication)

	for i, rec := range rows {
		n := i + 1
		result.Rows++
		if rec.Err != nil {
			result.Reject(n, "%v", rec.Err)
			continue
		}

		row, err := parseApplicationRow(rec.Cells)
		if err != nil {
			result.Reject(n, "%v", err)
			continue
		}

		outcome, err := is.applyApplication(ctx, row)
		if err != nil {
			result.Reject(n, "%v", err)
			continue
		}
		count(result, outcome)
	}

	is.finish(result)
	return result
}

func (is *ImportService) applyApplication(ctx context.Context, row applicationRow) (outcome, error) {
	if existing, ok := is.store.ApplicationByName(row.Name); ok {
		return is.updateApplication(ctx, existing.Id, row)
	}

	_, err := is.store.CreateApplication(ctx, row.fields())
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		// created concurrently since the lookup; merge instead
		if existing, ok := is.store.ApplicationByName(row.Name); ok {
			return is.updateApplication(ctx, existing.Id, row)
		}
	}
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (is *ImportService) updateApplication(ctx context.Context, id string, row applicationRow) (outcome, error) {
	_, changed, err := is.store.UpdateApplication(ctx, id, row.patch())
	if err != nil {
		return 0, err
	}
	if !changed {
		return unchanged, nil
	}
	return updated, nil
}

// ImportServers creates or updates servers matched by hostname. An
// application reference that does not resolve is stored as unassigned and
// reported as a warning.
func (is *ImportService) ImportServers(ctx context.Context, rows []models.Record) *models.ImportResult {
	result := models.NewImportResult(models.EntityServer)

	for i, rec := range rows {
		n := i + 1
		result.Rows++
		if rec.Err != nil {
			result.Reject(n, "%v", rec.Err)
			continue
		}

		row, err := parseServerRow(rec.Cells)
		if err != nil {
			result.Reject(n, "%v", err)
			continue
		}

		appId, resolved := is.resolveApplication(row)

		var o outcome
		if existing, ok := is.store.ServerByHostname(row.Hostname); ok {
			o, err = is.updateServer(ctx, existing.Id, row, appId, resolved)
		} else {
			o, err = is.createServer(ctx, row, appId)
		}
		if err != nil {
			result.Reject(n, "%v", err)
			continue
		}

		count(result, o)
		if row.hasApplicationRef() && !resolved {
			result.Warn(n, "application not found: %s", row.applicationRef())
		}
	}

	is.finish(result)
	return result
}

// resolveApplication maps the row's application reference to an id
func (is *ImportService) resolveApplication(row serverRow) (*string, bool) {
	switch {
	case row.ApplicationName.Present:
		if app, ok := is.store.ApplicationByName(row.ApplicationName.Value); ok {
			return &app.Id, true
		}
	case row.AppId.Present:
		if app, err := is.store.GetApplication(row.AppId.Value); err == nil {
			return &app.Id, true
		}
	}
	return nil, false
}

func (is *ImportService) createServer(ctx context.Context, row serverRow, appId *string) (outcome, error) {
	_, err := is.store.CreateServer(ctx, models.ServerFields{
		Hostname:  row.Hostname,
		IPAddress: row.IPAddress.Value,
		AppId:     appId,
	}, store.AllowUnassigned())
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (is *ImportService) updateServer(ctx context.Context, id string, row serverRow, appId *string, resolved bool) (outcome, error) {
	patch := models.ServerPatch{
		IPAddress: row.IPAddress.Ptr(),
	}
	if row.hasApplicationRef() {
		if resolved {
			patch.AppId = appId
		} else {
			patch.UnassignApp = true
		}
	}

	_, changed, err := is.store.UpdateServer(ctx, id, patch)
	if err != nil {
		return 0, err
	}
	if !changed {
		return unchanged, nil
	}
	return updated, nil
}

func (is *ImportService) finish(result *models.ImportResult) {
	logger.WithFields(map[string]interface{}{
		"entity":    result.Entity,
		"rows":      result.Rows,
		"created":   result.Created,
		"updated":   result.Updated,
		"unchanged": result.Unchanged,
		"rejected":  result.Rejected,
	}).Info("Import finished")

	if is.observer != nil {
		is.observer.ObserveImport(result)
	}
}

type outcome int

const (
	created outcome = iota + 1
	updated
	unchanged
)

func count(result *models.ImportResult, o outcome) {
	switch o {
	case created:
		result.Created++
	case updated:
		result.Updated++
	case unchanged:
		result.Unchanged++
	}
}
