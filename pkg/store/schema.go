package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// dialect captures the few statements that differ between backends.
type dialect struct {
	name string
	// serial is the column definition of an auto-incrementing primary key.
	serial string
	// numbered placeholders ($1, $2, ...) instead of ?.
	numbered bool
}

var (
	sqliteDialect   = dialect{name: "sqlite", serial: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	postgresDialect = dialect{name: "postgres", serial: "BIGSERIAL PRIMARY KEY", numbered: true}
)

// rebind rewrites ? placeholders for the dialect.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// CreateSchema creates the SQLite schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	return createSchema(db, sqliteDialect)
}

func createSchema(db *sql.DB, d dialect) error {
	if err := createSchemaVersionTable(db, d); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"documents", `
			CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY NOT NULL,
				size BIGINT NOT NULL
			)`},
		{"provenance", `
			CREATE TABLE IF NOT EXISTS provenance (
				id ` + d.serial + `,
				doc_id TEXT NOT NULL REFERENCES documents(id),
				kind TEXT NOT NULL,
				path TEXT NOT NULL DEFAULT '',
				repo_path TEXT NOT NULL DEFAULT '',
				commit_hash TEXT NOT NULL DEFAULT '',
				member_path TEXT NOT NULL DEFAULT '',
				UNIQUE(doc_id, kind, path, repo_path, commit_hash, member_path)
			)`},
		{"provenance index", `
			CREATE INDEX IF NOT EXISTS idx_provenance_doc_id ON provenance(doc_id)`},
		{"results", `
			CREATE TABLE IF NOT EXISTS results (
				id ` + d.serial + `,
				doc_id TEXT NOT NULL REFERENCES documents(id),
				source TEXT NOT NULL,
				profile_id TEXT NOT NULL,
				structural_id TEXT NOT NULL,
				mode TEXT NOT NULL,
				lines_json TEXT NOT NULL,
				input_lines INTEGER NOT NULL,
				error_kind TEXT NOT NULL DEFAULT '',
				error_line INTEGER NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				UNIQUE(doc_id, structural_id, mode)
			)`},
		{"results index", `
			CREATE INDEX IF NOT EXISTS idx_results_doc_id ON results(doc_id)`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("creating %s: %w", s.table, err)
		}
	}
	return nil
}

func createSchemaVersionTable(db *sql.DB, d dialect) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.Exec(d.rebind("INSERT INTO schema_version (version) VALUES (?)"), SchemaVersion)
		return err
	}

	var version int
	if err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return err
	}
	if version != SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (expected %d)", version, SchemaVersion)
	}
	return nil
}
