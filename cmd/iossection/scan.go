package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/netcfgkit/iossection/pkg/datastore"
	"github.com/netcfgkit/iossection/pkg/enum"
	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/sarif"
	"github.com/netcfgkit/iossection/pkg/scanner"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/spf13/cobra"
)

var (
	scanProfilesPath    string
	scanProfilesInclude string
	scanProfilesExclude string
	scanSelect          string
	scanMode            string
	scanDB              string
	scanFormat          string
	scanGit             bool
	scanNoGit           bool
	scanHistory         bool
	scanCommitRef       string
	scanArchives        bool
	scanMaxFileSize     int64
	scanIncludeHidden   bool
	scanIncremental     bool
	scanDatastore       string
	scanStoreDocuments  bool
	scanGitHubToken     string
	scanGitHubURL       string
	scanGitLabToken     string
	scanGitLabURL       string
)

var scanCmd = &cobra.Command{
	Use:   "scan <target> [target...]",
	Short: "Run section profiles over configuration backups",
	Long: `Run section profiles over every configuration file below the targets and
store one result per document and profile.

A target is a file, a directory, or a git repository of device backups
(RANCID, Oxidized). Git repositories are detected automatically; --history
also scans every configuration revision reachable from the commit.

Backup repositories hosted on GitHub or GitLab are read through their API
at the default branch:

  github:OWNER/REPO   github-org:ORG     github-user:USER
  gitlab:GROUP/PROJECT gitlab-group:GROUP gitlab-user:USER

Tokens come from --github-token / GITHUB_TOKEN and --gitlab-token /
GITLAB_TOKEN.`,
	Example: `  iossection scan ./backups
  iossection scan --select set.management --mode remove --db site.db ./rancid
  iossection scan --db postgres://netops@db/iossection --incremental ./oxidized
  iossection scan --datastore site.ds --store-documents ./backups
  iossection scan github-org:netops gitlab:netops/oxidized`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanProfilesPath, "profiles", "", "Path to custom profile file or directory")
	scanCmd.Flags().StringVar(&scanProfilesInclude, "profiles-include", "", "Include profiles whose ID matches (comma-separated regexes)")
	scanCmd.Flags().StringVar(&scanProfilesExclude, "profiles-exclude", "", "Exclude profiles whose ID matches (comma-separated regexes)")
	scanCmd.Flags().StringVar(&scanSelect, "select", "", "Run only these profile or profile set IDs (comma-separated)")
	scanCmd.Flags().StringVar(&scanMode, "mode", "extract", "Scan mode: extract, remove")
	scanCmd.Flags().StringVar(&scanDB, "db", "iossection.db", "Result store: SQLite path, :memory: or postgres:// URL")
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format: human, json, sarif")
	scanCmd.Flags().BoolVar(&scanGit, "git", false, "Treat targets as git repositories")
	scanCmd.Flags().BoolVar(&scanNoGit, "no-git", false, "Scan git working trees as plain directories")
	scanCmd.Flags().BoolVar(&scanHistory, "history", false, "Scan every commit reachable from --ref (git only)")
	scanCmd.Flags().StringVar(&scanCommitRef, "ref", "HEAD", "Git revision to scan")
	scanCmd.Flags().BoolVar(&scanArchives, "archives", false, "Expand .zip and .7z backup bundles")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip documents already in the store")
	scanCmd.Flags().StringVar(&scanDatastore, "datastore", "", "Datastore directory (overrides --db)")
	scanCmd.Flags().BoolVar(&scanStoreDocuments, "store-documents", false, "Keep scanned configurations in the datastore")
	scanCmd.Flags().StringVar(&scanGitHubToken, "github-token", "", "GitHub API token (or GITHUB_TOKEN env; optional for public repos)")
	scanCmd.Flags().StringVar(&scanGitHubURL, "github-url", "", "GitHub Enterprise API URL")
	scanCmd.Flags().StringVar(&scanGitLabToken, "gitlab-token", "", "GitLab API token (or GITLAB_TOKEN env)")
	scanCmd.Flags().StringVar(&scanGitLabURL, "gitlab-url", "", "GitLab instance URL (defaults to gitlab.com)")
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	for _, target := range args {
		if _, ok := parseRemoteTarget(target); ok {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	mode, ok := section.ParseMode(scanMode)
	if !ok {
		return fmt.Errorf("unknown mode: %s", scanMode)
	}
	if scanFormat != "human" && scanFormat != "json" && scanFormat != "sarif" {
		return fmt.Errorf("unknown output format: %s", scanFormat)
	}

	profiles, err := selectProfiles()
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles selected")
	}

	var s store.Store
	var docs scanner.DocumentSink
	dest := scanDB
	if scanDatastore != "" {
		ds, err := datastore.Open(scanDatastore, datastore.Options{StoreDocuments: scanStoreDocuments})
		if err != nil {
			return fmt.Errorf("opening datastore: %w", err)
		}
		defer ds.Close()
		s = ds.Store
		if scanStoreDocuments {
			docs = ds.Documents
		}
		dest = scanDatastore
	} else {
		if scanStoreDocuments {
			return fmt.Errorf("--store-documents requires --datastore")
		}
		s, err = store.New(store.Config{Path: scanDB})
		if err != nil {
			return fmt.Errorf("creating store: %w", err)
		}
		defer s.Close()
	}

	core, err := scanner.NewCore(scanner.Options{
		Profiles:    profiles,
		Mode:        mode,
		Store:       s,
		Incremental: scanIncremental,
		Documents:   docs,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating scanner: %w", err)
	}
	defer core.Close()

	var enumerators []enum.Enumerator
	for _, target := range args {
		e, err := createEnumerator(cmd, target)
		if err != nil {
			return err
		}
		enumerators = append(enumerators, e)
	}
	var enumerator enum.Enumerator = enumerators[0]
	if len(enumerators) > 1 {
		combined := enum.NewCombinedEnumerator(enumerators...)
		// Later copies of a configuration are not rescanned, only located.
		combined.OnDuplicate = s.AddProvenance
		enumerator = combined
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	var documents []*scanner.DocumentResult
	stats, err := core.Run(ctx, enumerator, func(doc *scanner.DocumentResult) {
		mu.Lock()
		documents = append(documents, doc)
		mu.Unlock()
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	// Output results (to stderr when using json/sarif to keep stdout pure JSON)
	summary := cmd.OutOrStdout()
	if scanFormat != "human" {
		summary = cmd.ErrOrStderr()
	}
	if scanIncremental {
		fmt.Fprintf(summary, "Scan complete: %d documents, %d results, %d failed (%d documents skipped)\n",
			stats.Documents, stats.Results, stats.Failures, stats.Skipped)
	} else {
		fmt.Fprintf(summary, "Scan complete: %d documents, %d results, %d failed\n",
			stats.Documents, stats.Results, stats.Failures)
	}
	fmt.Fprintf(summary, "Results stored in: %s\n", dest)

	switch scanFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(documents)
	case "sarif":
		var results []*types.Result
		for _, doc := range documents {
			results = append(results, doc.Results...)
		}
		return outputSARIF(cmd, profiles, results, nil)
	default:
		return outputScanHuman(cmd, documents)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// selectProfiles applies --profiles, the include/exclude filters and
// --select, in that order.
func selectProfiles() ([]*types.Profile, error) {
	profiles, err := loadProfiles(scanProfilesPath, scanProfilesInclude, scanProfilesExclude)
	if err != nil {
		return nil, err
	}
	if scanSelect == "" {
		return profiles, nil
	}

	sets, err := rule.NewLoader().LoadBuiltinProfileSets()
	if err != nil {
		return nil, err
	}
	return rule.Resolve(profiles, sets, rule.ParsePatterns(scanSelect))
}

func createEnumerator(cmd *cobra.Command, target string) (enum.Enumerator, error) {
	config := enum.Config{
		Root:            target,
		IncludeHidden:   scanIncludeHidden,
		MaxFileSize:     scanMaxFileSize,
		FollowSymlinks:  false,
		ExtractArchives: scanArchives,
	}

	if remote, ok := parseRemoteTarget(target); ok {
		config.Root = ""
		return createRemoteEnumerator(cmd, remote, config)
	}

	useGit := scanGit
	if !useGit && !scanNoGit && isGitRepo(target) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Detected git repository, scanning %s at %s\n", target, scanCommitRef)
		useGit = true
	}

	if useGit {
		e := enum.NewGitEnumerator(config)
		e.CommitRef = scanCommitRef
		e.History = scanHistory
		return e, nil
	}

	return enum.NewFilesystemEnumerator(config), nil
}

func isGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func outputScanHuman(cmd *cobra.Command, documents []*scanner.DocumentResult) error {
	var failed []*types.Result
	for _, doc := range documents {
		for _, r := range doc.Results {
			if r.Failed() {
				failed = append(failed, r)
			}
		}
	}

	if len(failed) == 0 {
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nFailures:\n")
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, r := range failed {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Source, r.ProfileID, r.ErrorKind, r.Error)
	}
	return nil
}

// outputSARIF writes results as a SARIF log. locations, when set, lists every
// known path of a document.
func outputSARIF(cmd *cobra.Command, profiles []*types.Profile, results []*types.Result, locations map[types.DocID][]string) error {
	report := sarif.NewReport()
	for _, p := range profiles {
		report.AddProfile(p)
	}

	for _, r := range results {
		report.AddResult(r, locations[r.DocID])
	}

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(append(jsonBytes, '\n')); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}
