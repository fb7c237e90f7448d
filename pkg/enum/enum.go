package enum

import (
	"context"

	"github.com/netcfgkit/iossection/pkg/types"
)

// Enumerator discovers configuration documents from a source.
type Enumerator interface {
	// Enumerate yields documents from the source.
	// The callback receives document content, its ID, and provenance information.
	Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration: a directory, a single file,
	// or a git repository.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// ExtractArchives expands .zip and .7z backup bundles into their members.
	ExtractArchives bool
}
