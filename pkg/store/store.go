package store

import (
	"fmt"
	"strings"

	"github.com/netcfgkit/iossection/pkg/types"
)

// Store persists scanned documents and the section results computed for them.
// Implementations must be safe for concurrent use.
type Store interface {
	// AddDocument records a scanned document. Adding it twice is a no-op.
	AddDocument(id types.DocID, size int64) error

	// AddProvenance associates a source location with a document.
	AddProvenance(id types.DocID, prov types.Provenance) error

	// AddResult stores a result, keyed by document, profile structure and
	// mode. A result already stored under the same key is kept.
	AddResult(r *types.Result) error

	// GetDocuments lists every recorded document.
	GetDocuments() ([]Document, error)

	// GetProvenance lists the known locations of a document.
	GetProvenance(id types.DocID) ([]types.Provenance, error)

	// GetResults retrieves the results for a document.
	GetResults(id types.DocID) ([]*types.Result, error)

	// GetAllResults retrieves every stored result (for reporting).
	GetAllResults() ([]*types.Result, error)

	// DocumentExists checks if a document has already been scanned.
	DocumentExists(id types.DocID) (bool, error)

	// Close releases the backend.
	Close() error
}

// Document is a recorded configuration document.
type Document struct {
	ID   types.DocID
	Size int64
}

// Config for store initialization.
type Config struct {
	// Path selects the backend: ":memory:" for an in-process store, a
	// postgres:// or postgresql:// URL for PostgreSQL, anything else is a
	// SQLite database file.
	Path string
}

// New creates a Store for cfg.Path.
func New(cfg Config) (Store, error) {
	switch {
	case cfg.Path == "":
		return nil, fmt.Errorf("path is required")
	case cfg.Path == ":memory:":
		return NewMemory(), nil
	case isPostgresURL(cfg.Path):
		return NewPostgres(cfg.Path)
	default:
		return NewSQLite(cfg.Path)
	}
}

func isPostgresURL(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}
