package enum

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/netcfgkit/iossection/pkg/types"
)

// GitEnumerator enumerates configurations stored in a git repository, the
// layout used by RANCID and Oxidized backup repositories.
type GitEnumerator struct {
	config Config
	// CommitRef selects the revision to enumerate (defaults to HEAD).
	CommitRef string
	// History walks every commit reachable from CommitRef instead of only
	// its tree. Each distinct blob is yielded once, attributed to the newest
	// commit it appears in.
	History bool
}

// NewGitEnumerator creates a new git enumerator.
func NewGitEnumerator(config Config) *GitEnumerator {
	return &GitEnumerator{
		config:    config,
		CommitRef: "HEAD",
	}
}

// Enumerate yields unique configuration blobs.
func (e *GitEnumerator) Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	repo, err := git.PlainOpen(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	ref, err := repo.ResolveRevision(plumbing.Revision(e.CommitRef))
	if err != nil {
		return fmt.Errorf("failed to resolve ref %s: %w", e.CommitRef, err)
	}

	commit, err := repo.CommitObject(*ref)
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	seen := make(map[plumbing.Hash]bool)

	if !e.History {
		return e.walkCommit(ctx, commit, seen, callback)
	}

	iter, err := repo.Log(&git.LogOptions{From: commit.Hash})
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	defer iter.Close()

	for {
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to walk history: %w", err)
		}
		if err := e.walkCommit(ctx, c, seen, callback); err != nil {
			return err
		}
	}
}

func (e *GitEnumerator) walkCommit(ctx context.Context, commit *object.Commit, seen map[plumbing.Hash]bool, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree of %s: %w", commit.Hash, err)
	}

	meta := &types.CommitMetadata{
		CommitID:       commit.Hash.String(),
		AuthorName:     commit.Author.Name,
		AuthorEmail:    commit.Author.Email,
		AuthorTime:     commit.Author.When,
		CommitterName:  commit.Committer.Name,
		CommitterEmail: commit.Committer.Email,
		CommitterTime:  commit.Committer.When,
		Message:        commit.Message,
	}

	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if seen[f.Hash] {
			return nil
		}
		seen[f.Hash] = true

		if e.config.MaxFileSize > 0 && f.Size > e.config.MaxFileSize {
			return nil
		}

		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to get contents of %s: %w", f.Name, err)
		}
		data := []byte(content)
		if isBinary(data) {
			return nil
		}

		prov := types.GitProvenance{
			RepoPath: e.config.Root,
			Commit:   meta,
			BlobPath: f.Name,
		}
		return callback(data, types.ComputeDocID(data), prov)
	})
	if err != nil {
		return fmt.Errorf("failed to walk tree: %w", err)
	}
	return nil
}
