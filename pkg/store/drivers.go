//go:build !wasm

package store

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// NewSQLite opens (creating if needed) a SQLite database file.
func NewSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY
	// when documents are scanned in parallel.
	db.SetMaxOpenConns(1)

	return openSQL(db, sqliteDialect)
}

// NewPostgres connects to a PostgreSQL server given a postgres:// URL.
func NewPostgres(url string) (*SQLStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return openSQL(db, postgresDialect)
}
