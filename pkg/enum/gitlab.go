package enum

import (
	"context"
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/netcfgkit/iossection/pkg/types"
)

// GitLabConfig configures enumeration of backup projects through the GitLab
// API.
type GitLabConfig struct {
	Token   string
	BaseURL string // Optional, defaults to gitlab.com
	Project string // Single project path (namespace/project)
	Group   string // Group name (optional)
	User    string // User name (optional)
	Config         // Embedded base Config; Root is unused
}

// GitLabEnumerator enumerates configurations in GitLab projects at their
// default branch.
type GitLabEnumerator struct {
	client *gitlab.Client
	config GitLabConfig
}

// NewGitLabEnumerator creates a GitLab enumerator.
func NewGitLabEnumerator(cfg GitLabConfig) (*GitLabEnumerator, error) {
	if cfg.Project == "" && cfg.Group == "" && cfg.User == "" {
		return nil, fmt.Errorf("must specify project, group, or user")
	}

	var opts []gitlab.ClientOptionFunc
	if cfg.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(cfg.BaseURL))
	}
	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	return &GitLabEnumerator{client: client, config: cfg}, nil
}

// Enumerate yields every text file of the selected projects.
func (e *GitLabEnumerator) Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	projects, err := e.listProjects(ctx)
	if err != nil {
		return err
	}

	for _, project := range projects {
		if err := e.enumerateProject(ctx, project, callback); err != nil {
			return fmt.Errorf("enumerating %s: %w", project.PathWithNamespace, err)
		}
	}
	return nil
}

func (e *GitLabEnumerator) listProjects(ctx context.Context) ([]*gitlab.Project, error) {
	if e.config.Project != "" {
		project, _, err := e.client.Projects.GetProject(e.config.Project, nil, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("getting project: %w", err)
		}
		return []*gitlab.Project{project}, nil
	}

	if e.config.Group != "" {
		opts := &gitlab.ListGroupProjectsOptions{ListOptions: gitlab.ListOptions{PerPage: 100}}
		var all []*gitlab.Project
		for {
			projects, resp, err := e.client.Groups.ListGroupProjects(e.config.Group, opts, gitlab.WithContext(ctx))
			if err != nil {
				return nil, fmt.Errorf("listing group projects: %w", err)
			}
			all = append(all, projects...)
			if resp.NextPage == 0 {
				return all, nil
			}
			opts.Page = resp.NextPage
		}
	}

	opts := &gitlab.ListProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		Owned:       gitlab.Ptr(true),
	}
	var all []*gitlab.Project
	for {
		projects, resp, err := e.client.Projects.ListUserProjects(e.config.User, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("listing user projects: %w", err)
		}
		all = append(all, projects...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (e *GitLabEnumerator) enumerateProject(ctx context.Context, project *gitlab.Project, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	treeOpts := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Ptr(true),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	fileOpts := &gitlab.GetRawFileOptions{}
	if project.DefaultBranch != "" {
		treeOpts.Ref = gitlab.Ptr(project.DefaultBranch)
		fileOpts.Ref = gitlab.Ptr(project.DefaultBranch)
	}

	var nodes []*gitlab.TreeNode
	for {
		page, resp, err := e.client.Repositories.ListTree(project.ID, treeOpts, gitlab.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("listing tree: %w", err)
		}
		nodes = append(nodes, page...)
		if resp.NextPage == 0 {
			break
		}
		treeOpts.Page = resp.NextPage
	}

	for _, node := range nodes {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if node.Type != "blob" {
			continue
		}
		if !e.config.IncludeHidden && hasHiddenElement(node.Path) {
			continue
		}

		content, _, err := e.client.RepositoryFiles.GetRawFile(project.ID, node.Path, fileOpts, gitlab.WithContext(ctx))
		if err != nil {
			continue
		}
		if e.config.MaxFileSize > 0 && int64(len(content)) > e.config.MaxFileSize {
			continue
		}
		if isBinary(content) {
			continue
		}

		prov := types.GitProvenance{
			RepoPath: project.PathWithNamespace,
			BlobPath: node.Path,
		}
		if err := callback(content, types.ComputeDocID(content), prov); err != nil {
			return err
		}
	}
	return nil
}
