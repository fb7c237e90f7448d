//go:build !wasm

package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postgresEnv names a PostgreSQL URL to run the store suite against.
const postgresEnv = "IOSSECTION_TEST_POSTGRES_URL"

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)

// backends returns a fresh store per backend under test.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	b := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLite(filepath.Join(t.TempDir(), "results.db"))
			require.NoError(t, err)
			return s
		},
	}
	if url := os.Getenv(postgresEnv); url != "" {
		b["postgres"] = func(t *testing.T) Store {
			s, err := NewPostgres(url)
			require.NoError(t, err)
			for _, table := range []string{"results", "provenance", "documents"} {
				_, err := s.db.Exec("DELETE FROM " + table)
				require.NoError(t, err)
			}
			return s
		}
	}
	return b
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			fn(t, s)
		})
	}
}

func sampleResult(doc types.DocID, profile, mode string, lines ...string) *types.Result {
	return &types.Result{
		DocID:        doc,
		Source:       "core1.cfg",
		ProfileID:    profile,
		StructuralID: "sid-" + profile,
		Mode:         mode,
		Lines:        lines,
		InputLines:   10,
		CreatedAt:    time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC),
	}
}

func TestNew(t *testing.T) {
	s, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	s, err = New(Config{Path: filepath.Join(t.TempDir(), "scan.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = New(Config{Path: ""})
	assert.ErrorContains(t, err, "path is required")
}

func TestNew_PostgresURLUnreachable(t *testing.T) {
	_, err := New(Config{Path: "postgres://nobody@127.0.0.1:1/none?connect_timeout=1"})
	assert.Error(t, err)
}

func TestIsPostgresURL(t *testing.T) {
	assert.True(t, isPostgresURL("postgres://u@h/db"))
	assert.True(t, isPostgresURL("postgresql://u@h/db"))
	assert.False(t, isPostgresURL("/var/lib/iossection/scan.db"))
	assert.False(t, isPostgresURL(":memory:"))
}

func TestStore_Documents(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id := types.ComputeDocID([]byte("hostname core1\n"))

		exists, err := s.DocumentExists(id)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, s.AddDocument(id, 15))
		require.NoError(t, s.AddDocument(id, 15), "adding twice is idempotent")

		exists, err = s.DocumentExists(id)
		require.NoError(t, err)
		assert.True(t, exists)

		docs, err := s.GetDocuments()
		require.NoError(t, err)
		assert.Equal(t, []Document{{ID: id, Size: 15}}, docs)
	})
}

func TestStore_Provenance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		id := types.ComputeDocID([]byte("hostname core1\n"))
		require.NoError(t, s.AddDocument(id, 15))

		provs := []types.Provenance{
			types.FileProvenance{FilePath: "/backups/core1.cfg"},
			types.GitProvenance{RepoPath: "/rancid", BlobPath: "configs/core1", Commit: &types.CommitMetadata{CommitID: "abc123"}},
			types.ArchiveProvenance{ArchivePath: "/backups/site.zip", MemberPath: "core1.cfg"},
			types.InlineProvenance{Source: "stdin"},
		}
		for _, p := range provs {
			require.NoError(t, s.AddProvenance(id, p))
		}
		require.NoError(t, s.AddProvenance(id, provs[0]), "duplicate provenance is ignored")

		got, err := s.GetProvenance(id)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := range provs {
			assert.Equal(t, provs[i].Kind(), got[i].Kind())
			assert.Equal(t, provs[i].Path(), got[i].Path())
		}
		gp, ok := got[1].(types.GitProvenance)
		require.True(t, ok)
		require.NotNil(t, gp.Commit)
		assert.Equal(t, "abc123", gp.Commit.CommitID)

		none, err := s.GetProvenance(types.ComputeDocID([]byte("other")))
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

type fakeProvenance struct{}

func (fakeProvenance) Kind() string { return "fake" }
func (fakeProvenance) Path() string { return "" }

func TestStore_UnknownProvenance(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		err := s.AddProvenance(types.ComputeDocID(nil), fakeProvenance{})
		assert.ErrorContains(t, err, "unknown provenance type")
	})
}

func TestStore_Results(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		doc := types.ComputeDocID([]byte("hostname core1\n"))
		other := types.ComputeDocID([]byte("hostname core2\n"))
		require.NoError(t, s.AddDocument(doc, 15))
		require.NoError(t, s.AddDocument(other, 15))

		extract := sampleResult(doc, "ios.banner", "extract", "banner motd ^C", "hello", "^C")
		remove := sampleResult(doc, "ios.banner", "remove", "hostname core1")
		failed := sampleResult(other, "ios.banner", "extract")
		failed.ErrorKind = types.ErrorKindBanner
		failed.Error = "extract: missing end of banner for line 0"
		failed.ErrorLine = 1

		require.NoError(t, s.AddResult(extract))
		require.NoError(t, s.AddResult(remove))
		require.NoError(t, s.AddResult(failed))

		dup := sampleResult(doc, "ios.banner", "extract", "different")
		require.NoError(t, s.AddResult(dup), "duplicate key keeps the first result")

		got, err := s.GetResults(doc)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, extract.Lines, got[0].Lines)
		assert.Equal(t, "extract", got[0].Mode)
		assert.Equal(t, "remove", got[1].Mode)
		assert.Equal(t, "core1.cfg", got[0].Source)
		assert.Equal(t, 10, got[0].InputLines)
		assert.True(t, extract.CreatedAt.Equal(got[0].CreatedAt))

		got, err = s.GetResults(other)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Failed())
		assert.Equal(t, types.ErrorKindBanner, got[0].ErrorKind)
		assert.Equal(t, 1, got[0].ErrorLine)
		assert.Equal(t, []string{}, got[0].Lines)

		all, err := s.GetAllResults()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestStore_ConcurrentWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s Store) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := types.ComputeDocID([]byte{byte(i)})
				assert.NoError(t, s.AddDocument(id, 1))
				assert.NoError(t, s.AddResult(sampleResult(id, "ios.aaa", "extract")))
			}(i)
		}
		wg.Wait()

		docs, err := s.GetDocuments()
		require.NoError(t, err)
		assert.Len(t, docs, 20)

		all, err := s.GetAllResults()
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})
}

func TestMemoryStore_CopiesResults(t *testing.T) {
	s := NewMemory()
	r := sampleResult(types.ComputeDocID(nil), "ios.aaa", "extract", "aaa new-model")
	require.NoError(t, s.AddResult(r))

	r.Lines[0] = "mutated"

	got, err := s.GetAllResults()
	require.NoError(t, err)
	assert.Equal(t, "aaa new-model", got[0].Lines[0])
}
