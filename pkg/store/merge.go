package store

import (
	"fmt"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the stores to merge from.
	SourcePaths []string
	// DestPath is the destination store. Any path accepted by New works.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	DocumentsMerged  int
	ResultsMerged    int
	ProvenanceMerged int
	SourcesProcessed int
}

// Merge combines the documents, provenance and results of several stores,
// e.g. from scans run per site, into one. Duplicates are dropped by the
// destination's own keys.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	dest, err := New(Config{Path: cfg.DestPath})
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer dest.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		if err := mergeFrom(dest, sourcePath, stats); err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.SourcesProcessed++
	}
	return stats, nil
}

// mergeFrom copies one source store into dest.
func mergeFrom(dest Store, sourcePath string, stats *MergeStats) error {
	src, err := New(Config{Path: sourcePath})
	if err != nil {
		return fmt.Errorf("opening source database: %w", err)
	}
	defer src.Close()

	return MergeStore(dest, src, stats)
}

// MergeStore copies everything in src into dest, counting into stats.
func MergeStore(dest, src Store, stats *MergeStats) error {
	docs, err := src.GetDocuments()
	if err != nil {
		return err
	}

	for _, doc := range docs {
		exists, err := dest.DocumentExists(doc.ID)
		if err != nil {
			return err
		}
		if !exists {
			stats.DocumentsMerged++
		}
		if err := dest.AddDocument(doc.ID, doc.Size); err != nil {
			return fmt.Errorf("merging document %s: %w", doc.ID.Short(), err)
		}

		provs, err := src.GetProvenance(doc.ID)
		if err != nil {
			return err
		}
		for _, prov := range provs {
			if err := dest.AddProvenance(doc.ID, prov); err != nil {
				return fmt.Errorf("merging provenance: %w", err)
			}
			stats.ProvenanceMerged++
		}

		results, err := src.GetResults(doc.ID)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := dest.AddResult(r); err != nil {
				return fmt.Errorf("merging result: %w", err)
			}
			stats.ResultsMerged++
		}
	}
	return nil
}
