package ports

import (
	"context"

	"wavestats/domain/core"
	"wavestats/domain/summary"
)

// Artifact describes one persisted table.
type Artifact struct {
	Name    string   `json:"name"`
	Path    string   `json:"path"`
	Format  string   `json:"format"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`

	// Fingerprint hashes the rendered cells, independent of Format.
	Fingerprint core.Hash `json:"fingerprint"`
}

// TableExporter persists flat records as a named table.
type TableExporter interface {
	// Export writes records under name and returns where they went. An empty
	// record list writes nothing and returns a nil artifact with a nil error:
	// callers treat that as "table not produced", not as a failure.
	Export(ctx context.Context, records []summary.Record, name string) (*Artifact, error)
}
