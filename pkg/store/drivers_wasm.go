//go:build wasm

package store

import "errors"

// errNoDriver is returned by the SQL constructors in WASM builds, which only
// have the in-memory store.
var errNoDriver = errors.New("SQL stores are not available in WASM builds")

// NewSQLite is unavailable in WASM builds.
func NewSQLite(path string) (*SQLStore, error) {
	return nil, errNoDriver
}

// NewPostgres is unavailable in WASM builds.
func NewPostgres(url string) (*SQLStore, error) {
	return nil, errNoDriver
}
