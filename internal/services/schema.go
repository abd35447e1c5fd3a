package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imyashkale/shutdownmanager/internal/models"
)

// Import columns, in template order
var (
	ApplicationColumns = []string{"name", "owner", "web_ui", "db_port"}
	ServerColumns      = []string{"hostname", "ip_address", "application_name"}
)

// RowError is a structured parse failure for one column of an import row
type RowError struct {
	Column  string
	Message string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Column, e.Message)
}

// Field is an optional coerced cell. Present is false for missing or blank cells.
type Field[T any] struct {
	Value   T
	Present bool
}

// Ptr returns a pointer to the value, or nil when the cell was absent
func (f Field[T]) Ptr() *T {
	if !f.Present {
		return nil
	}
	v := f.Value
	return &v
}

type coerceFunc[T any] func(raw string) (T, error)

// cell reads one column through its coercion. Blank cells are absent, not errors.
func cell[T any](row models.RawRow, column string, coerce coerceFunc[T]) (Field[T], error) {
	raw := strings.TrimSpace(row[column])
	if raw == "" {
		return Field[T]{}, nil
	}
	v, err := coerce(raw)
	if err != nil {
		return Field[T]{}, &RowError{Column: column, Message: err.Error()}
	}
	return Field[T]{Value: v, Present: true}, nil
}

// requiredCell is cell for natural-key columns
func requiredCell[T any](row models.RawRow, column string, coerce coerceFunc[T]) (T, error) {
	f, err := cell(row, column, coerce)
	if err != nil {
		return f.Value, err
	}
	if !f.Present {
		return f.Value, &RowError{Column: column, Message: "is required"}
	}
	return f.Value, nil
}

func asString(raw string) (string, error) {
	return raw, nil
}

func asPort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("%d is outside the port range 1-65535", port)
	}
	return port, nil
}

// applicationRow is a typed application import row
type applicationRow struct {
	Name   string
	Owner  Field[string]
	WebUI  Field[string]
	DBPort Field[int]
}

func parseApplicationRow(row models.RawRow) (applicationRow, error) {
	var (
		out applicationRow
		err error
	)
	if out.Name, err = requiredCell(row, "name", asString); err != nil {
		return out, err
	}
	if out.Owner, err = cell(row, "owner", asString); err != nil {
		return out, err
	}
	if out.WebUI, err = cell(row, "web_ui", asString); err != nil {
		return out, err
	}
	if out.DBPort, err = cell(row, "db_port", asPort); err != nil {
		return out, err
	}
	return out, nil
}

func (r applicationRow) fields() models.ApplicationFields {
	return models.ApplicationFields{
		Name:   r.Name,
		Owner:  r.Owner.Value,
		WebUI:  r.WebUI.Value,
		DBPort: r.DBPort.Ptr(),
	}
}

// patch carries only the cells that were present; status is never part of an import
func (r applicationRow) patch() models.ApplicationPatch {
	return models.ApplicationPatch{
		Owner:  r.Owner.Ptr(),
		WebUI:  r.WebUI.Ptr(),
		DBPort: r.DBPort.Ptr(),
	}
}

// serverRow is a typed server import row. The application may be referenced by
// name or, as in older templates, by id.
type serverRow struct {
	Hostname        string
	IPAddress       Field[string]
	ApplicationName Field[string]
	AppId           Field[string]
}

func parseServerRow(row models.RawRow) (serverRow, error) {
	var (
		out serverRow
		err error
	)
	if out.Hostname, err = requiredCell(row, "hostname", asString); err != nil {
		return out, err
	}
	if out.IPAddress, err = cell(row, "ip_address", asString); err != nil {
		return out, err
	}
	if out.ApplicationName, err = cell(row, "application_name", asString); err != nil {
		return out, err
	}
	if out.AppId, err = cell(row, "app_id", asString); err != nil {
		return out, err
	}
	return out, nil
}

// hasApplicationRef reports whether the row names an application at all
func (r serverRow) hasApplicationRef() bool {
	return r.ApplicationName.Present || r.AppId.Present
}

func (r serverRow) applicationRef() string {
	if r.ApplicationName.Present {
		return r.ApplicationName.Value
	}
	return r.AppId.Value
}
