// Package datastore keeps a scan's result database and, optionally, the
// scanned configurations themselves in one directory, so a report can show
// the document a result came from long after the backup rotated away.
package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/netcfgkit/iossection/pkg/store"
)

// DBName is the result database inside a datastore directory.
const DBName = "datastore.db"

// Datastore is an opened datastore directory.
type Datastore struct {
	Path      string         // Directory path (e.g., "site.ds")
	Store     store.Store    // SQLite store for documents, provenance and results
	Documents *DocumentStore // nil unless Options.StoreDocuments is set
}

// Options configures datastore behavior.
type Options struct {
	StoreDocuments bool // keep scanned configurations (--store-documents)
}

// Open opens or creates a datastore directory.
func Open(path string, opts Options) (*Datastore, error) {
	if path == "" {
		return nil, fmt.Errorf("datastore path is required")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating datastore directory: %w", err)
	}

	// Backups may be sensitive; keep the datastore out of any surrounding repo.
	if err := os.WriteFile(filepath.Join(path, ".gitignore"), []byte("*\n"), 0644); err != nil {
		return nil, fmt.Errorf("writing .gitignore: %w", err)
	}

	docRoot := filepath.Join(path, "documents")
	if opts.StoreDocuments {
		if err := os.MkdirAll(docRoot, 0755); err != nil {
			return nil, fmt.Errorf("creating documents directory: %w", err)
		}
	}

	s, err := store.New(store.Config{Path: filepath.Join(path, DBName)})
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	ds := &Datastore{Path: path, Store: s}

	// A datastore written with --store-documents stays readable without it.
	if opts.StoreDocuments || dirExists(docRoot) {
		ds.Documents = &DocumentStore{Root: docRoot}
	}

	return ds, nil
}

// IsDatastore reports whether path is a datastore directory.
func IsDatastore(path string) bool {
	info, err := os.Stat(filepath.Join(path, DBName))
	return err == nil && !info.IsDir()
}

// Close closes the datastore and releases resources.
func (d *Datastore) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
