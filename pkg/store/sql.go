package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/netcfgkit/iossection/pkg/types"
)

// SQLStore implements Store on database/sql. It backs both the SQLite and
// the PostgreSQL stores.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

func openSQL(db *sql.DB, d dialect) (*SQLStore, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", d.name, err)
	}
	if err := createSchema(db, d); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{db: db, d: d}, nil
}

func (s *SQLStore) exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.d.rebind(query), args...)
}

func (s *SQLStore) query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.d.rebind(query), args...)
}

// AddDocument records a scanned document.
func (s *SQLStore) AddDocument(id types.DocID, size int64) error {
	_, err := s.exec("INSERT INTO documents (id, size) VALUES (?, ?) ON CONFLICT DO NOTHING", id.Hex(), size)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// provenanceColumns flattens a provenance into its table columns.
func provenanceColumns(prov types.Provenance) (path, repoPath, commitHash, memberPath string, err error) {
	switch p := prov.(type) {
	case types.FileProvenance:
		path = p.FilePath
	case types.GitProvenance:
		path = p.BlobPath
		repoPath = p.RepoPath
		if p.Commit != nil {
			commitHash = p.Commit.CommitID
		}
	case types.ArchiveProvenance:
		path = p.ArchivePath
		memberPath = p.MemberPath
	case types.InlineProvenance:
		path = p.Source
	default:
		err = fmt.Errorf("unknown provenance type: %T", prov)
	}
	return
}

func provenanceFromColumns(kind, path, repoPath, commitHash, memberPath string) (types.Provenance, error) {
	switch kind {
	case "file":
		return types.FileProvenance{FilePath: path}, nil
	case "git":
		gp := types.GitProvenance{RepoPath: repoPath, BlobPath: path}
		if commitHash != "" {
			gp.Commit = &types.CommitMetadata{CommitID: commitHash}
		}
		return gp, nil
	case "archive":
		return types.ArchiveProvenance{ArchivePath: path, MemberPath: memberPath}, nil
	case "inline":
		return types.InlineProvenance{Source: path}, nil
	default:
		return nil, fmt.Errorf("unknown provenance kind: %s", kind)
	}
}

// AddProvenance associates provenance with a document.
func (s *SQLStore) AddProvenance(id types.DocID, prov types.Provenance) error {
	path, repoPath, commitHash, memberPath, err := provenanceColumns(prov)
	if err != nil {
		return err
	}

	_, err = s.exec(`
		INSERT INTO provenance (doc_id, kind, path, repo_path, commit_hash, member_path)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, id.Hex(), prov.Kind(), path, repoPath, commitHash, memberPath)
	if err != nil {
		return fmt.Errorf("inserting provenance: %w", err)
	}
	return nil
}

// AddResult stores a result.
func (s *SQLStore) AddResult(r *types.Result) error {
	lines := r.Lines
	if lines == nil {
		lines = []string{}
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshaling lines: %w", err)
	}

	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.exec(`
		INSERT INTO results (doc_id, source, profile_id, structural_id, mode, lines_json, input_lines, error_kind, error_line, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.DocID.Hex(),
		r.Source,
		r.ProfileID,
		r.StructuralID,
		r.Mode,
		string(linesJSON),
		r.InputLines,
		r.ErrorKind,
		r.ErrorLine,
		r.Error,
		created.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	return nil
}

// GetDocuments lists every recorded document.
func (s *SQLStore) GetDocuments() ([]Document, error) {
	rows, err := s.query("SELECT id, size FROM documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var idHex string
		var doc Document
		if err := rows.Scan(&idHex, &doc.Size); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if doc.ID, err = types.ParseDocID(idHex); err != nil {
			return nil, fmt.Errorf("parsing document ID: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// GetProvenance lists the known locations of a document.
func (s *SQLStore) GetProvenance(id types.DocID) ([]types.Provenance, error) {
	rows, err := s.query(`
		SELECT kind, path, repo_path, commit_hash, member_path
		FROM provenance
		WHERE doc_id = ?
		ORDER BY id
	`, id.Hex())
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	provs := []types.Provenance{}
	for rows.Next() {
		var kind, path, repoPath, commitHash, memberPath string
		if err := rows.Scan(&kind, &path, &repoPath, &commitHash, &memberPath); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		prov, err := provenanceFromColumns(kind, path, repoPath, commitHash, memberPath)
		if err != nil {
			return nil, err
		}
		provs = append(provs, prov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating provenance: %w", err)
	}
	return provs, nil
}

const selectResults = `
	SELECT doc_id, source, profile_id, structural_id, mode, lines_json, input_lines, error_kind, error_line, error, created_at
	FROM results
`

// GetResults retrieves the results for a document.
func (s *SQLStore) GetResults(id types.DocID) ([]*types.Result, error) {
	return s.queryResults(selectResults+" WHERE doc_id = ? ORDER BY id", id.Hex())
}

// GetAllResults retrieves every stored result.
func (s *SQLStore) GetAllResults() ([]*types.Result, error) {
	return s.queryResults(selectResults + " ORDER BY id")
}

func (s *SQLStore) queryResults(query string, args ...any) ([]*types.Result, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := []*types.Result{}
	for rows.Next() {
		var r types.Result
		var idHex, linesJSON, created string

		err := rows.Scan(&idHex, &r.Source, &r.ProfileID, &r.StructuralID, &r.Mode,
			&linesJSON, &r.InputLines, &r.ErrorKind, &r.ErrorLine, &r.Error, &created)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}

		if r.DocID, err = types.ParseDocID(idHex); err != nil {
			return nil, fmt.Errorf("parsing document ID: %w", err)
		}
		if err := json.Unmarshal([]byte(linesJSON), &r.Lines); err != nil {
			return nil, fmt.Errorf("unmarshaling lines: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// DocumentExists checks if a document has already been scanned.
func (s *SQLStore) DocumentExists(id types.DocID) (bool, error) {
	var count int
	err := s.db.QueryRow(s.d.rebind("SELECT COUNT(*) FROM documents WHERE id = ?"), id.Hex()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document existence: %w", err)
	}
	return count > 0, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
