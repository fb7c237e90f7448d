package datastore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/netcfgkit/iossection/pkg/types"
)

// ErrDocumentNotFound is returned by Get for an unknown document.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is content-addressed storage for scanned configurations,
// laid out as <root>/<first 2 hex chars>/<remaining hex chars>.
type DocumentStore struct {
	Root string
}

// Put stores content under its document ID. Storing the same content twice
// is a no-op.
func (d *DocumentStore) Put(content []byte) (types.DocID, error) {
	id := types.ComputeDocID(content)

	path := d.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.DocID{}, fmt.Errorf("creating document directory: %w", err)
	}

	// Temp file + rename, so concurrent scanners never see a partial document.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return types.DocID{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return types.DocID{}, fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return types.DocID{}, fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return types.DocID{}, fmt.Errorf("renaming document: %w", err)
	}

	return id, nil
}

// Get retrieves a stored document.
func (d *DocumentStore) Get(id types.DocID) ([]byte, error) {
	content, err := os.ReadFile(d.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id.Hex())
		}
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return content, nil
}

// Exists checks if a document is stored.
func (d *DocumentStore) Exists(id types.DocID) bool {
	_, err := os.Stat(d.path(id))
	return err == nil
}

func (d *DocumentStore) path(id types.DocID) string {
	hex := id.Hex()
	return filepath.Join(d.Root, hex[:2], hex[2:])
}
