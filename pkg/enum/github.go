package enum

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/netcfgkit/iossection/pkg/types"
)

// GitHubConfig configures enumeration of backup repositories through the
// GitHub API.
type GitHubConfig struct {
	Token   string // API token; empty means unauthenticated (public repos only)
	BaseURL string // API root for GitHub Enterprise, e.g. https://ghe.example/api/v3/
	Owner   string // Repository owner (for single repo)
	Repo    string // Repository name (for single repo)
	Org     string // Organization name (list all org repos)
	User    string // User name (list all user repos)
	Config         // Embedded base config; Root is unused
}

// GitHubEnumerator enumerates configurations in GitHub repositories at their
// default branch.
type GitHubEnumerator struct {
	client *github.Client
	config GitHubConfig
}

// NewGitHubEnumerator creates a GitHub API enumerator.
func NewGitHubEnumerator(cfg GitHubConfig) (*GitHubEnumerator, error) {
	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	client := github.NewClient(hc)

	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	return &GitHubEnumerator{client: client, config: cfg}, nil
}

// Enumerate yields every text file of the selected repositories.
func (e *GitHubEnumerator) Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	repos, err := e.listRepos(ctx)
	if err != nil {
		return err
	}

	for _, repo := range repos {
		if err := e.enumerateRepo(ctx, repo, callback); err != nil {
			return fmt.Errorf("enumerating %s: %w", repo.GetFullName(), err)
		}
	}
	return nil
}

func (e *GitHubEnumerator) listRepos(ctx context.Context) ([]*github.Repository, error) {
	if e.config.Repo != "" {
		if e.config.Owner == "" {
			return nil, fmt.Errorf("owner required when repo specified")
		}
		repo, _, err := e.client.Repositories.Get(ctx, e.config.Owner, e.config.Repo)
		if err != nil {
			return nil, fmt.Errorf("getting repository: %w", err)
		}
		return []*github.Repository{repo}, nil
	}

	if e.config.Org != "" {
		opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: 100}}
		var all []*github.Repository
		for {
			repos, resp, err := e.client.Repositories.ListByOrg(ctx, e.config.Org, opts)
			if err != nil {
				return nil, fmt.Errorf("listing org repositories: %w", err)
			}
			all = append(all, repos...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	if e.config.User != "" {
		opts := &github.RepositoryListOptions{ListOptions: github.ListOptions{PerPage: 100}}
		var all []*github.Repository
		for {
			repos, resp, err := e.client.Repositories.List(ctx, e.config.User, opts)
			if err != nil {
				return nil, fmt.Errorf("listing user repositories: %w", err)
			}
			all = append(all, repos...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	return nil, fmt.Errorf("must specify repo (with owner), org, or user")
}

func (e *GitHubEnumerator) enumerateRepo(ctx context.Context, repo *github.Repository, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	owner, name := repo.GetOwner().GetLogin(), repo.GetName()
	branch := repo.GetDefaultBranch()
	if branch == "" {
		branch = "main"
	}

	tree, _, err := e.client.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return fmt.Errorf("getting tree: %w", err)
	}
	if tree.GetTruncated() {
		return fmt.Errorf("tree of %s is truncated; clone it and scan the working copy", repo.GetFullName())
	}

	for _, entry := range tree.Entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if entry.GetType() != "blob" {
			continue
		}
		if !e.config.IncludeHidden && hasHiddenElement(entry.GetPath()) {
			continue
		}
		if e.config.MaxFileSize > 0 && int64(entry.GetSize()) > e.config.MaxFileSize {
			continue
		}

		file, _, _, err := e.client.Repositories.GetContents(ctx, owner, name, entry.GetPath(),
			&github.RepositoryContentGetOptions{Ref: branch})
		if err != nil || file == nil {
			// Files the API refuses (size, permissions) are skipped like unreadable local files.
			continue
		}
		text, err := file.GetContent()
		if err != nil {
			continue
		}
		data := []byte(text)
		if isBinary(data) {
			continue
		}

		prov := types.GitProvenance{
			RepoPath: repo.GetFullName(),
			BlobPath: entry.GetPath(),
		}
		if err := callback(data, types.ComputeDocID(data), prov); err != nil {
			return err
		}
	}
	return nil
}

// hasHiddenElement reports whether any element of a slash-separated path is
// hidden.
func hasHiddenElement(p string) bool {
	for _, elem := range strings.Split(path.Clean(p), "/") {
		if isHidden(elem) {
			return true
		}
	}
	return false
}
