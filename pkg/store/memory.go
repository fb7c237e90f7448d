package store

import (
	"sort"
	"sync"

	"github.com/netcfgkit/iossection/pkg/types"
)

type resultKey struct {
	doc          types.DocID
	structuralID string
	mode         string
}

// MemoryStore implements Store with in-process maps.
type MemoryStore struct {
	mu         sync.RWMutex
	documents  map[types.DocID]int64
	provenance map[types.DocID][]types.Provenance
	results    []*types.Result
	seen       map[resultKey]bool
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		documents:  make(map[types.DocID]int64),
		provenance: make(map[types.DocID][]types.Provenance),
		seen:       make(map[resultKey]bool),
	}
}

// AddDocument records a scanned document.
func (m *MemoryStore) AddDocument(id types.DocID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[id]; !exists {
		m.documents[id] = size
	}
	return nil
}

// AddProvenance associates provenance with a document.
func (m *MemoryStore) AddProvenance(id types.DocID, prov types.Provenance) error {
	path, repoPath, commitHash, memberPath, err := provenanceColumns(prov)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Compare on the persisted columns so both backends agree on duplicates.
	for _, p := range m.provenance[id] {
		pp, pr, pc, pm, _ := provenanceColumns(p)
		if p.Kind() == prov.Kind() && pp == path && pr == repoPath && pc == commitHash && pm == memberPath {
			return nil
		}
	}

	m.provenance[id] = append(m.provenance[id], prov)
	return nil
}

// AddResult stores a result.
func (m *MemoryStore) AddResult(r *types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := resultKey{doc: r.DocID, structuralID: r.StructuralID, mode: r.Mode}
	if m.seen[key] {
		return nil
	}
	m.seen[key] = true

	stored := *r
	stored.Lines = append([]string{}, r.Lines...)
	m.results = append(m.results, &stored)
	return nil
}

// GetDocuments lists every recorded document, ordered by ID.
func (m *MemoryStore) GetDocuments() ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]Document, 0, len(m.documents))
	for id, size := range m.documents {
		docs = append(docs, Document{ID: id, Size: size})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID.Hex() < docs[j].ID.Hex() })
	return docs, nil
}

// GetProvenance lists the known locations of a document.
func (m *MemoryStore) GetProvenance(id types.DocID) ([]types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]types.Provenance{}, m.provenance[id]...), nil
}

// GetResults retrieves the results for a document.
func (m *MemoryStore) GetResults(id types.DocID) ([]*types.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := []*types.Result{}
	for _, r := range m.results {
		if r.DocID == id {
			results = append(results, r)
		}
	}
	return results, nil
}

// GetAllResults retrieves every stored result.
func (m *MemoryStore) GetAllResults() ([]*types.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*types.Result{}, m.results...), nil
}

// DocumentExists checks if a document has already been scanned.
func (m *MemoryStore) DocumentExists(id types.DocID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.documents[id]
	return exists, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
