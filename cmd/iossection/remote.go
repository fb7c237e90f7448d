package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/netcfgkit/iossection/pkg/enum"
	"github.com/spf13/cobra"
)

// remoteTarget is a scan target hosted on GitHub or GitLab.
type remoteTarget struct {
	Host  string // "github" or "gitlab"
	Scope string // "repo", "org", "group" or "user"
	Name  string
}

var remoteSchemes = map[string]remoteTarget{
	"github":       {Host: "github", Scope: "repo"},
	"github-org":   {Host: "github", Scope: "org"},
	"github-user":  {Host: "github", Scope: "user"},
	"gitlab":       {Host: "gitlab", Scope: "repo"},
	"gitlab-group": {Host: "gitlab", Scope: "group"},
	"gitlab-user":  {Host: "gitlab", Scope: "user"},
}

// parseRemoteTarget recognizes "github:owner/repo", "gitlab-group:netops"
// and the other scheme:name forms. Anything else is a local path.
func parseRemoteTarget(target string) (remoteTarget, bool) {
	scheme, name, found := strings.Cut(target, ":")
	if !found {
		return remoteTarget{}, false
	}
	t, ok := remoteSchemes[scheme]
	if !ok {
		return remoteTarget{}, false
	}
	t.Name = name
	return t, true
}

func createRemoteEnumerator(cmd *cobra.Command, t remoteTarget, config enum.Config) (enum.Enumerator, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("%s target needs a name", t.Host)
	}

	switch t.Host {
	case "github":
		token := scanGitHubToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Note: no GitHub token, using unauthenticated access (public repositories only)\n")
		}

		cfg := enum.GitHubConfig{Token: token, BaseURL: scanGitHubURL, Config: config}
		switch t.Scope {
		case "repo":
			owner, repo, ok := strings.Cut(t.Name, "/")
			if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
				return nil, fmt.Errorf("invalid GitHub repository %q, expected owner/repo", t.Name)
			}
			cfg.Owner, cfg.Repo = owner, repo
		case "org":
			cfg.Org = t.Name
		case "user":
			cfg.User = t.Name
		}
		e, err := enum.NewGitHubEnumerator(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating GitHub client: %w", err)
		}
		return e, nil

	default:
		token := scanGitLabToken
		if token == "" {
			token = os.Getenv("GITLAB_TOKEN")
		}

		cfg := enum.GitLabConfig{Token: token, BaseURL: scanGitLabURL, Config: config}
		switch t.Scope {
		case "repo":
			if !strings.Contains(t.Name, "/") {
				return nil, fmt.Errorf("invalid GitLab project %q, expected group/project", t.Name)
			}
			cfg.Project = t.Name
		case "group":
			cfg.Group = t.Name
		case "user":
			cfg.User = t.Name
		}
		e, err := enum.NewGitLabEnumerator(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating GitLab client: %w", err)
		}
		return e, nil
	}
}
