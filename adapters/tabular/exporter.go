// Package tabular persists flat records as CSV or XLSX tables on the local
// filesystem.
package tabular

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wavestats/domain/core"
	"wavestats/domain/summary"
	"wavestats/ports"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// tableWriter encodes one table to a file.
type tableWriter interface {
	ext() string
	write(path string, table Table) error
}

// Exporter writes tables into a single output directory.
type Exporter struct {
	dir    string
	format string
	writer tableWriter
}

var _ ports.TableExporter = (*Exporter)(nil)

// NewExporter creates an exporter for format ("csv" or "xlsx") writing under dir.
func NewExporter(format, dir string) (*Exporter, error) {
	var w tableWriter
	switch strings.ToLower(format) {
	case FormatCSV, "":
		w = csvWriter{}
	case FormatXLSX:
		w = xlsxWriter{}
	default:
		return nil, fmt.Errorf("unsupported table format: %s", format)
	}
	return &Exporter{dir: dir, format: w.ext(), writer: w}, nil
}

// NewCSVExporter creates a CSV exporter writing under dir.
func NewCSVExporter(dir string) *Exporter {
	return &Exporter{dir: dir, format: FormatCSV, writer: csvWriter{}}
}

// NewXLSXExporter creates an XLSX exporter writing under dir.
func NewXLSXExporter(dir string) *Exporter {
	return &Exporter{dir: dir, format: FormatXLSX, writer: xlsxWriter{}}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Format returns the file format written.
func (e *Exporter) Format() string { return e.format }

// Export writes records to <dir>/<name>.<ext>. Nothing is created, not even the
// directory, when records is empty.
func (e *Exporter) Export(ctx context.Context, records []summary.Record, name string) (*ports.Artifact, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, core.NewExportError(name, fmt.Errorf("failed to create output directory: %w", err))
	}

	table := NewTable(records)
	path := filepath.Join(e.dir, fileName(name)+"."+e.writer.ext())
	if err := e.writer.write(path, table); err != nil {
		os.Remove(path) // Clean up on failure
		return nil, core.NewExportError(name, err)
	}

	return &ports.Artifact{
		Name:    name,
		Path:    path,
		Format:  e.format,
		Columns: table.Columns,
		Rows:    len(table.Rows),

		Fingerprint: table.Fingerprint(),
	}, nil
}

// fileName keeps grouping labels used in table names from escaping the
// output directory.
func fileName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
