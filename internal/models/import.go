package models

import "fmt"

// RawRow is one record of an import file, keyed by column name
type RawRow map[string]string

// Record is one data row of an import file. Err is set when the line could
// not be split into columns; Cells is nil then.
type Record struct {
	Cells RawRow
	Err   error
}

// DiagnosticLevel classifies a per-row import message
type DiagnosticLevel string

const (
	LevelWarning  DiagnosticLevel = "warning"
	LevelRejected DiagnosticLevel = "rejected"
)

// RowDiagnostic is feedback about a single import row. Row is 1-based and
// counts data rows only.
type RowDiagnostic struct {
	Row     int             `json:"row"`
	Level   DiagnosticLevel `json:"level"`
	Message string          `json:"message"`
}

func (d RowDiagnostic) String() string {
	return fmt.Sprintf("row %d: %s: %s", d.Row, d.Level, d.Message)
}

// ImportResult summarizes a reconciliation run
type ImportResult struct {
	Entity      EntityType      `json:"entity"`
	Rows        int             `json:"rows"`
	Created     int             `json:"created"`
	Updated     int             `json:"updated"`
	Unchanged   int             `json:"unchanged"`
	Rejected    int             `json:"rejected"`
	Diagnostics []RowDiagnostic `json:"diagnostics"`
}

// NewImportResult returns an empty result for the given entity type
func NewImportResult(entity EntityType) *ImportResult {
	return &ImportResult{
		Entity:      entity,
		Diagnostics: []RowDiagnostic{},
	}
}

// Reject records a rejected row
func (r *ImportResult) Reject(row int, format string, args ...interface{}) {
	r.Rejected++
	r.Diagnostics = append(r.Diagnostics, RowDiagnostic{
		Row:     row,
		Level:   LevelRejected,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warn records a warning for a row that was still applied
func (r *ImportResult) Warn(row int, format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, RowDiagnostic{
		Row:     row,
		Level:   LevelWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnings returns only the warning diagnostics
func (r *ImportResult) Warnings() []RowDiagnostic {
	return r.filter(LevelWarning)
}

// Rejections returns only the rejected-row diagnostics
func (r *ImportResult) Rejections() []RowDiagnostic {
	return r.filter(LevelRejected)
}

func (r *ImportResult) filter(level DiagnosticLevel) []RowDiagnostic {
	out := make([]RowDiagnostic, 0)
	for _, d := range r.Diagnostics {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}
