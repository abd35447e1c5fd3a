package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/imyashkale/shutdownmanager/internal/models"
	"github.com/imyashkale/shutdownmanager/internal/store"
	"gopkg.in/yaml.v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeRows picks a decoder from the file extension
func DecodeRows(filename string, r io.Reader) ([]models.Record, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return DecodeCSV(r)
	case ".yaml", ".yml":
		return DecodeYAML(r)
	default:
		return nil, &store.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("unsupported file type %q, expected .csv, .yaml or .yml", filepath.Ext(filename)),
		}
	}
}

// DecodeCSV reads a header row followed by data rows. Header names are
// trimmed and lower-cased; a leading UTF-8 BOM is ignored. Only a missing or
// malformed header fails the file. A data line that cannot be parsed, or has
// more fields than the header, becomes a Record carrying the error.
func DecodeCSV(r io.Reader) ([]models.Record, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &store.ValidationError{Field: "file", Message: "missing header row"}
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &store.ValidationError{Field: "file", Message: err.Error()}
		}
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	rows := make([]models.Record, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read csv: %w", err)
			}
			// the reader resumes at the next line
			rows = append(rows, models.Record{
				Err: fmt.Errorf("line %d, column %d: %w", parseErr.Line, parseErr.Column, parseErr.Err),
			})
			continue
		}
		if len(record) > len(header) {
			rows = append(rows, models.Record{
				Err: fmt.Errorf("%d fields, header has %d", len(record), len(header)),
			})
			continue
		}

		row := make(models.RawRow, len(header))
		for i, value := range record {
			if header[i] == "" {
				continue
			}
			row[header[i]] = value
		}
		rows = append(rows, models.Record{Cells: row})
	}
	return rows, nil
}

// DecodeYAML reads a top-level sequence of mappings. Scalars are converted to
// their textual form. A mapping holding a nested value becomes a Record
// carrying the error.
func DecodeYAML(r io.Reader) ([]models.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read yaml: %w", err)
	}

	var docs []map[string]interface{}
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, &store.ValidationError{Field: "file", Message: err.Error()}
	}

	rows := make([]models.Record, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, yamlRecord(doc))
	}
	return rows, nil
}

func yamlRecord(doc map[string]interface{}) models.Record {
	row := make(models.RawRow, len(doc))
	for key, value := range doc {
		text, err := scalarString(value)
		if err != nil {
			return models.Record{Err: fmt.Errorf("%s: %w", key, err)}
		}
		row[strings.ToLower(strings.TrimSpace(key))] = text
	}
	return models.Record{Cells: row}
}

func scalarString(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}

// WriteTemplate writes the header row of an import file for the entity
func WriteTemplate(w io.Writer, entity models.EntityType) error {
	var columns []string
	switch entity {
	case models.EntityApplication:
		columns = ApplicationColumns
	case models.EntityServer:
		columns = ServerColumns
	default:
		return &store.ValidationError{Field: "entity", Message: fmt.Sprintf("unknown entity type %q", entity)}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
