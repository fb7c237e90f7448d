package enum

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcfgkit/iossection/pkg/types"
)

const remoteRouterConfig = "hostname core1\n!\ninterface Loopback0\n ip address 10.0.0.1 255.255.255.255\n!\n"

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

// headerRecorder keeps the last value of one request header a handler saw.
type headerRecorder struct {
	name string
	mu   sync.Mutex
	auth string
}

func (h *headerRecorder) record(r *http.Request) {
	h.mu.Lock()
	h.auth = r.Header.Get(h.name)
	h.mu.Unlock()
}

func (h *headerRecorder) get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.auth
}

// newGitHubServer serves one org with one repository holding two
// configurations, a hidden workflow file and a directory entry.
func newGitHubServer(t *testing.T) (*httptest.Server, *headerRecorder) {
	t.Helper()
	auth := &headerRecorder{name: "Authorization"}

	repo := map[string]any{
		"name":           "backups",
		"full_name":      "netops/backups",
		"default_branch": "main",
		"owner":          map[string]any{"login": "netops"},
	}
	files := map[string]string{
		"r1.cfg":                     remoteRouterConfig,
		"core/sw1.cfg":               "hostname sw1\n",
		".github/workflows/lint.yml": "on: push\n",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/netops/backups", func(w http.ResponseWriter, r *http.Request) {
		auth.record(r)
		writeJSON(t, w, repo)
	})
	mux.HandleFunc("/orgs/netops/repos", func(w http.ResponseWriter, r *http.Request) {
		auth.record(r)
		writeJSON(t, w, []any{repo})
	})
	mux.HandleFunc("/repos/netops/backups/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		writeJSON(t, w, map[string]any{
			"sha": "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
			"tree": []map[string]any{
				{"path": "core", "type": "tree"},
				{"path": "core/sw1.cfg", "type": "blob", "size": 13},
				{"path": "r1.cfg", "type": "blob", "size": len(remoteRouterConfig)},
				{"path": ".github/workflows/lint.yml", "type": "blob", "size": 9},
			},
			"truncated": false,
		})
	})
	for name, content := range files {
		content := content
		mux.HandleFunc("/repos/netops/backups/contents/"+name, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "main", r.URL.Query().Get("ref"))
			writeJSON(t, w, map[string]any{
				"type":     "file",
				"encoding": "base64",
				"content":  base64.StdEncoding.EncodeToString([]byte(content)),
			})
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, auth
}

func collectRemote(t *testing.T, e Enumerator) map[string]string {
	t.Helper()
	got := make(map[string]string)
	err := e.Enumerate(context.Background(), func(content []byte, id types.DocID, prov types.Provenance) error {
		assert.Equal(t, types.ComputeDocID(content), id)
		gp, ok := prov.(types.GitProvenance)
		require.True(t, ok)
		got[gp.RepoPath+":"+gp.BlobPath] = string(content)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestGitHubEnumerator_SingleRepo(t *testing.T) {
	srv, auth := newGitHubServer(t)

	e, err := NewGitHubEnumerator(GitHubConfig{
		Token:   "ghp_test",
		BaseURL: srv.URL,
		Owner:   "netops",
		Repo:    "backups",
	})
	require.NoError(t, err)

	got := collectRemote(t, e)
	assert.Equal(t, map[string]string{
		"netops/backups:r1.cfg":       remoteRouterConfig,
		"netops/backups:core/sw1.cfg": "hostname sw1\n",
	}, got)
	assert.Equal(t, "Bearer ghp_test", auth.get())
}

func TestGitHubEnumerator_Org(t *testing.T) {
	srv, auth := newGitHubServer(t)

	e, err := NewGitHubEnumerator(GitHubConfig{BaseURL: srv.URL + "/", Org: "netops"})
	require.NoError(t, err)

	got := collectRemote(t, e)
	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"netops/backups:core/sw1.cfg", "netops/backups:r1.cfg"}, keys)
	assert.Empty(t, auth.get(), "no token means no Authorization header")
}

func TestGitHubEnumerator_IncludeHiddenAndMaxSize(t *testing.T) {
	srv, _ := newGitHubServer(t)

	e, err := NewGitHubEnumerator(GitHubConfig{
		BaseURL: srv.URL,
		Owner:   "netops",
		Repo:    "backups",
		Config:  Config{IncludeHidden: true, MaxFileSize: 20},
	})
	require.NoError(t, err)

	got := collectRemote(t, e)
	assert.Equal(t, map[string]string{
		"netops/backups:core/sw1.cfg":               "hostname sw1\n",
		"netops/backups:.github/workflows/lint.yml": "on: push\n",
	}, got)
}

func TestGitHubEnumerator_RequiresTarget(t *testing.T) {
	e, err := NewGitHubEnumerator(GitHubConfig{Token: "test-token"})
	require.NoError(t, err, "construction succeeds, enumeration fails")

	err = e.Enumerate(context.Background(), func([]byte, types.DocID, types.Provenance) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must specify repo")
}

func TestGitHubEnumerator_OwnerRequired(t *testing.T) {
	e, err := NewGitHubEnumerator(GitHubConfig{Repo: "backups"})
	require.NoError(t, err)

	err = e.Enumerate(context.Background(), func([]byte, types.DocID, types.Provenance) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner required")
}

func TestGitHubEnumerator_Interface(t *testing.T) {
	e, err := NewGitHubEnumerator(GitHubConfig{Org: "netops"})
	require.NoError(t, err)
	var _ Enumerator = e
}

func TestHasHiddenElement(t *testing.T) {
	assert.True(t, hasHiddenElement(".gitignore"))
	assert.True(t, hasHiddenElement("configs/.old/r1.cfg"))
	assert.False(t, hasHiddenElement("configs/r1.cfg"))
	assert.False(t, hasHiddenElement("./r1.cfg"))
}
