package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/netcfgkit/iossection/pkg/prefilter"
	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/netcfgkit/iossection/pkg/types"
)

var (
	// cachedBuiltinProfiles holds builtin profiles loaded once per process
	cachedBuiltinProfiles []*types.Profile
	cachedProfilesErr     error
	cacheOnce             sync.Once
)

func loadBuiltinProfilesCached() ([]*types.Profile, error) {
	cacheOnce.Do(func() {
		cachedBuiltinProfiles, cachedProfilesErr = rule.NewLoader().LoadBuiltinProfiles()
	})
	return cachedBuiltinProfiles, cachedProfilesErr
}

// GetBuiltinProfiles returns the builtin profiles (cached).
func GetBuiltinProfiles() ([]*types.Profile, error) {
	return loadBuiltinProfilesCached()
}

// Options configures a Core.
type Options struct {
	// Profiles to run; nil selects the builtin profiles.
	Profiles []*types.Profile
	Mode     section.Mode
	// Store receives documents and results; nil uses an in-memory store
	// owned by the Core.
	Store store.Store
	// Incremental skips documents the store already holds.
	Incremental bool
	// Documents, when set, keeps a copy of every scanned document.
	Documents DocumentSink
	Logger    *slog.Logger
}

// DocumentSink stores document content by ID. datastore.DocumentStore
// implements it.
type DocumentSink interface {
	Put(content []byte) (types.DocID, error)
}

// Core runs section profiles over configuration documents and records the
// results.
type Core struct {
	profiles    []*types.Profile
	filters     map[string]*section.Filter // by profile ID
	prefilter   *prefilter.Prefilter
	mode        section.Mode
	store       store.Store
	ownsStore   bool
	documents   DocumentSink
	incremental bool
	logger      *slog.Logger
}

// NewCore compiles every profile up front so a bad pattern fails before any
// document is read.
func NewCore(opts Options) (*Core, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	profiles := opts.Profiles
	if profiles == nil {
		var err error
		profiles, err = loadBuiltinProfilesCached()
		if err != nil {
			return nil, fmt.Errorf("loading builtin profiles: %w", err)
		}
		logger.Debug("loaded builtin profiles", "count", len(profiles))
	}

	filters := make(map[string]*section.Filter, len(profiles))
	for _, p := range profiles {
		if _, dup := filters[p.ID]; dup {
			return nil, fmt.Errorf("duplicate profile ID: %s", p.ID)
		}
		f, err := section.Compile(p.SectionConfig())
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.ID, err)
		}
		filters[p.ID] = f
	}

	c := &Core{
		profiles:    profiles,
		filters:     filters,
		prefilter:   prefilter.New(profiles),
		mode:        opts.Mode,
		store:       opts.Store,
		documents:   opts.Documents,
		incremental: opts.Incremental,
		logger:      logger,
	}
	if c.store == nil {
		c.store = store.NewMemory()
		c.ownsStore = true
	}

	logger.Debug("scanner ready", "profiles", len(profiles), "mode", c.mode)
	return c, nil
}

// Store returns the store results are written to.
func (c *Core) Store() store.Store {
	return c.store
}

// ScanDocument runs every candidate profile over content. A profile that
// fails (for example on an unterminated banner) is recorded as a failed
// result and does not stop the others. The returned error is reserved for
// store failures and cancellation.
func (c *Core) ScanDocument(ctx context.Context, content []byte, prov types.Provenance) (*DocumentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := types.ComputeDocID(content)
	doc := &DocumentResult{DocID: id, Source: prov.Path(), Results: []*types.Result{}}

	if c.incremental {
		exists, err := c.store.DocumentExists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			c.logger.Debug("skipping known document", "source", doc.Source, "doc", id.Short())
			if err := c.store.AddProvenance(id, prov); err != nil {
				return nil, err
			}
			doc.Skipped = true
			return doc, nil
		}
	}

	if err := c.store.AddDocument(id, int64(len(content))); err != nil {
		return nil, err
	}
	if err := c.store.AddProvenance(id, prov); err != nil {
		return nil, err
	}
	if c.documents != nil {
		if _, err := c.documents.Put(content); err != nil {
			return nil, fmt.Errorf("storing document: %w", err)
		}
	}

	lines := section.SplitLines(string(content))
	for _, p := range c.prefilter.Filter(content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r := c.run(p, lines)
		r.DocID = id
		r.Source = doc.Source
		if r.Failed() {
			c.logger.Warn("profile failed", "source", doc.Source, "profile", p.ID, "error", r.Error)
		}
		if err := c.store.AddResult(r); err != nil {
			return nil, err
		}
		doc.Results = append(doc.Results, r)
	}

	c.logger.Debug("scanned document", "source", doc.Source, "doc", id.Short(),
		"lines", len(lines), "profiles", len(doc.Results), "failed", doc.Failed())
	return doc, nil
}

func (c *Core) run(p *types.Profile, lines []string) *types.Result {
	r := &types.Result{
		ProfileID:    p.ID,
		StructuralID: p.StructuralID,
		Mode:         c.mode.String(),
		InputLines:   len(lines),
		CreatedAt:    time.Now().UTC(),
	}
	if r.StructuralID == "" {
		r.StructuralID = p.ComputeStructuralID()
	}

	out, err := c.filters[p.ID].Scan(lines, c.mode)
	if err != nil {
		r.Error = err.Error()
		r.ErrorKind = ErrorKind(err)
		var bannerErr *section.BannerError
		if errors.As(err, &bannerErr) {
			r.ErrorLine = bannerErr.Line + 1
		}
		return r
	}
	r.Lines = out
	return r
}

// ErrorKind classifies an engine error for a Result.
func ErrorKind(err error) string {
	var cfgErr *section.ConfigError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, section.ErrUnterminatedBanner):
		return types.ErrorKindBanner
	case errors.As(err, &cfgErr):
		return types.ErrorKindConfig
	default:
		return types.ErrorKindMatch
	}
}

// Scan scans a single inline configuration.
func (c *Core) Scan(ctx context.Context, content, source string) (*DocumentResult, error) {
	return c.ScanDocument(ctx, []byte(content), types.InlineProvenance{Source: source})
}

// ScanBatch scans multiple inline configurations in order.
func (c *Core) ScanBatch(ctx context.Context, items []ContentItem) ([]*DocumentResult, error) {
	results := make([]*DocumentResult, 0, len(items))
	for _, item := range items {
		r, err := c.Scan(ctx, item.Content, item.Source)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Source yields configuration documents. Every enum.Enumerator is a Source;
// the scanner does not import enum so WASM builds stay free of git and
// archive support.
type Source interface {
	Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error
}

// Run scans every document the source yields. onDocument, if set, is
// called after each document and may run concurrently.
func (c *Core) Run(ctx context.Context, e Source, onDocument func(*DocumentResult)) (*Stats, error) {
	var mu sync.Mutex
	stats := &Stats{}

	err := e.Enumerate(ctx, func(content []byte, _ types.DocID, prov types.Provenance) error {
		doc, err := c.ScanDocument(ctx, content, prov)
		if err != nil {
			return fmt.Errorf("%s: %w", prov.Path(), err)
		}

		mu.Lock()
		stats.Documents++
		if doc.Skipped {
			stats.Skipped++
		}
		stats.Results += len(doc.Results)
		stats.Failures += doc.Failed()
		mu.Unlock()

		if onDocument != nil {
			onDocument(doc)
		}
		return nil
	})
	return stats, err
}

// Close releases the store if the Core created it.
func (c *Core) Close() error {
	if c.ownsStore {
		return c.store.Close()
	}
	return nil
}
