package types

import (
	"fmt"
	"time"
)

// Provenance records where a configuration document came from.
type Provenance interface {
	Kind() string
	// Path returns a displayable location.
	Path() string
}

// FileProvenance is a configuration read from the filesystem.
type FileProvenance struct {
	FilePath string
}

func (f FileProvenance) Kind() string { return "file" }
func (f FileProvenance) Path() string { return f.FilePath }

// GitProvenance is a configuration read from a git tree, as kept by
// RANCID or Oxidized backup repositories.
type GitProvenance struct {
	RepoPath string
	Commit   *CommitMetadata
	BlobPath string
}

func (g GitProvenance) Kind() string { return "git" }
func (g GitProvenance) Path() string { return g.BlobPath }

// CommitMetadata holds the commit a git configuration was read at.
type CommitMetadata struct {
	CommitID       string
	AuthorName     string
	AuthorEmail    string
	AuthorTime     time.Time
	CommitterName  string
	CommitterEmail string
	CommitterTime  time.Time
	Message        string
}

// ArchiveProvenance is a configuration stored inside a backup bundle.
type ArchiveProvenance struct {
	ArchivePath string
	MemberPath  string
}

func (a ArchiveProvenance) Kind() string { return "archive" }

func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// InlineProvenance is content handed over directly (stdin, serve requests).
type InlineProvenance struct {
	Source string
}

func (i InlineProvenance) Kind() string { return "inline" }
func (i InlineProvenance) Path() string { return i.Source }
