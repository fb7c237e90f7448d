package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/netcfgkit/iossection/pkg/datastore"
	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDB       string
	reportFormat   string
	reportColor    string
	reportMaxLines int
)

// styles holds color formatters for report output
type styles struct {
	resultHeading *color.Color
	id            *color.Color
	profileName   *color.Color
	heading       *color.Color
	failure       *color.Color
	metadata      *color.Color
}

// newStyles creates color formatters for report output
func newStyles(enabled bool) *styles {
	s := &styles{
		resultHeading: color.New(color.Bold, color.FgHiWhite),
		id:            color.New(color.FgHiGreen),
		profileName:   color.New(color.Bold, color.FgHiBlue),
		heading:       color.New(color.Bold),
		failure:       color.New(color.FgRed),
		metadata:      color.New(color.FgHiBlue),
	}

	for _, c := range []*color.Color{s.resultHeading, s.id, s.profileName, s.heading, s.failure, s.metadata} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return s
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read section results from a scan store and output them",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDB, "db", "iossection.db", "Result store: SQLite path, datastore directory or postgres:// URL")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, table, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportMaxLines, "max-lines", 20, "Lines shown per result (0 for all)")
}

// reportEntry is a stored result with every known location of its document.
type reportEntry struct {
	*types.Result
	Locations []string `json:"locations"`
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDB == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if !isPostgresTarget(reportDB) {
		if _, err := os.Stat(reportDB); err != nil {
			return fmt.Errorf("store not found: %s", reportDB)
		}
	}

	s, err := openStore(reportDB)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	results, err := s.GetAllResults()
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}

	entries, err := buildEntries(s, results)
	if err != nil {
		return err
	}

	// Builtin profiles for display; results of custom profiles show their ID.
	known := make(map[string]*types.Profile)
	if builtin, err := rule.NewLoader().LoadBuiltinProfiles(); err == nil {
		for _, p := range builtin {
			known[p.ID] = p
		}
	}

	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "table":
		return outputReportTable(cmd, entries)
	case "sarif":
		return outputReportSARIF(cmd, entries, known)
	case "human":
		return outputReportHuman(cmd, entries, known, newStyles(colorEnabled(reportColor)))
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// openStore opens a store path, a postgres URL or a datastore directory.
func openStore(path string) (store.Store, error) {
	if datastore.IsDatastore(path) {
		path = filepath.Join(path, datastore.DBName)
	}
	return store.New(store.Config{Path: path})
}

func isPostgresTarget(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// buildEntries attaches provenance, querying each document once.
func buildEntries(s store.Store, results []*types.Result) ([]*reportEntry, error) {
	locations := make(map[types.DocID][]string)
	entries := make([]*reportEntry, 0, len(results))

	for _, r := range results {
		locs, ok := locations[r.DocID]
		if !ok {
			provs, err := s.GetProvenance(r.DocID)
			if err != nil {
				return nil, fmt.Errorf("retrieving provenance: %w", err)
			}
			locs = make([]string, 0, len(provs))
			for _, p := range provs {
				locs = append(locs, p.Path())
			}
			sort.Strings(locs)
			locations[r.DocID] = locs
		}
		entries = append(entries, &reportEntry{Result: r, Locations: locs})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Source != entries[j].Source {
			return entries[i].Source < entries[j].Source
		}
		return entries[i].ProfileID < entries[j].ProfileID
	})
	return entries, nil
}

// outputReportTable prints one row per profile and mode.
func outputReportTable(cmd *cobra.Command, entries []*reportEntry) error {
	type row struct {
		documents, lines, failed int
	}
	rows := make(map[[2]string]*row)
	var keys [][2]string

	for _, e := range entries {
		k := [2]string{e.ProfileID, e.Mode}
		r, ok := rows[k]
		if !ok {
			r = &row{}
			rows[k] = r
			keys = append(keys, k)
		}
		r.documents++
		r.lines += len(e.Lines)
		if e.Failed() {
			r.failed++
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Profile\tMode\tDocuments\tLines\tFailed\n")
	fmt.Fprintf(w, "-------\t----\t---------\t-----\t------\n")
	for _, k := range keys {
		r := rows[k]
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", k[0], k[1], r.documents, r.lines, r.failed)
	}
	return nil
}

func outputReportHuman(cmd *cobra.Command, entries []*reportEntry, known map[string]*types.Profile, s *styles) error {
	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		fmt.Fprintf(out, "No results.\n")
		return nil
	}

	total := len(entries)
	for i, e := range entries {
		fmt.Fprintf(out, "%s (%s %s)\n",
			s.resultHeading.Sprintf("Result %d/%d", i+1, total),
			s.heading.Sprint("doc"),
			s.id.Sprint(e.DocID.Short()))

		name := e.ProfileID
		if p, ok := known[e.ProfileID]; ok {
			name = fmt.Sprintf("%s (%s)", p.Name, e.ProfileID)
		}
		fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Profile:"), s.profileName.Sprint(name))
		fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Mode:"), e.Mode)

		for _, loc := range e.Locations {
			fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("File:"), s.metadata.Sprint(loc))
		}

		if e.Failed() {
			fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Error:"), s.failure.Sprintf("[%s] %s", e.ErrorKind, e.Error))
			fmt.Fprintf(out, "\n\n")
			continue
		}

		fmt.Fprintf(out, "%s %d of %d\n", s.heading.Sprint("Lines:"), len(e.Lines), e.InputLines)
		lines := e.Lines
		if reportMaxLines > 0 && len(lines) > reportMaxLines {
			lines = lines[:reportMaxLines]
		}
		if len(lines) > 0 {
			fmt.Fprintln(out)
			for _, line := range lines {
				fmt.Fprintf(out, "    %s\n", line)
			}
			if len(lines) < len(e.Lines) {
				fmt.Fprintf(out, "    ... %d more\n", len(e.Lines)-len(lines))
			}
		}

		fmt.Fprintf(out, "\n\n")
	}

	return nil
}

// outputReportSARIF lists each profile that produced a result once.
func outputReportSARIF(cmd *cobra.Command, entries []*reportEntry, known map[string]*types.Profile) error {
	var profiles []*types.Profile
	seen := make(map[string]bool)
	results := make([]*types.Result, 0, len(entries))
	locations := make(map[types.DocID][]string)

	for _, e := range entries {
		if !seen[e.ProfileID] {
			seen[e.ProfileID] = true
			p, ok := known[e.ProfileID]
			if !ok {
				p = &types.Profile{ID: e.ProfileID, Name: e.ProfileID}
			}
			profiles = append(profiles, p)
		}
		results = append(results, e.Result)
		locations[e.DocID] = e.Locations
	}

	return outputSARIF(cmd, profiles, results, locations)
}
