package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/spf13/cobra"
)

var (
	profilesPath    string
	profilesFormat  string
	profilesVerbose bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage section profiles",
	Long:  "Commands for listing and checking section profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	Long:  "Display all available section profiles with their IDs and patterns",
	RunE:  runProfilesList,
}

var profilesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate profiles",
	Long: `Compile every profile pattern and run its examples and negative examples.
Builtin profile sets are checked against the builtin profiles.
With --verbose, the anchored expressions of each valid profile are printed.`,
	RunE: runProfilesCheck,
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesCheckCmd)
	profilesCmd.PersistentFlags().StringVar(&profilesPath, "profiles", "", "Path to custom profile file or directory")
	profilesListCmd.Flags().StringVar(&profilesFormat, "format", "table", "Output format: table, json")
	profilesCheckCmd.Flags().BoolVarP(&profilesVerbose, "verbose", "v", false, "Print the anchored expressions of each profile")
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles(profilesPath, "", "")
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	switch profilesFormat {
	case "json":
		return outputProfilesJSON(cmd, profiles)
	case "table":
		return outputProfilesTable(cmd, profiles)
	default:
		return fmt.Errorf("unknown output format: %s", profilesFormat)
	}
}

func runProfilesCheck(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles(profilesPath, "", "")
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	var sets []*types.ProfileSet
	if profilesPath == "" {
		sets, err = rule.NewLoader().LoadBuiltinProfileSets()
		if err != nil {
			return fmt.Errorf("loading profile sets: %w", err)
		}
	}

	errs := rule.ValidateAll(profiles, sets)
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %v\n", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d problem(s) in %d profiles: %w", len(errs), len(profiles), errors.Join(errs...))
	}

	if profilesVerbose {
		if err := outputProfileExpressions(cmd, profiles); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d profiles and %d sets OK\n", len(profiles), len(sets))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadProfiles loads the custom profiles at path, or the builtin profiles,
// and applies the include/exclude ID filters.
func loadProfiles(path, include, exclude string) ([]*types.Profile, error) {
	loader := rule.NewLoader()

	var profiles []*types.Profile
	var err error

	if path != "" {
		profiles, err = loader.LoadPath(path)
	} else {
		profiles, err = loader.LoadBuiltinProfiles()
	}
	if err != nil {
		return nil, err
	}

	// Apply filtering if patterns specified
	if include != "" || exclude != "" {
		config := rule.FilterConfig{
			Include: rule.ParsePatterns(include),
			Exclude: rule.ParsePatterns(exclude),
		}
		profiles, err = rule.Filter(profiles, config)
		if err != nil {
			return nil, fmt.Errorf("filtering profiles: %w", err)
		}
	}

	return profiles, nil
}

// outputProfileExpressions prints the expressions each profile is matched
// with, after prefix, anchors and the ^C twin are applied.
func outputProfileExpressions(cmd *cobra.Command, profiles []*types.Profile) error {
	out := cmd.OutOrStdout()
	for _, p := range profiles {
		f, err := section.Compile(p.SectionConfig())
		if err != nil {
			return fmt.Errorf("profile %s: %w", p.ID, err)
		}
		fmt.Fprintf(out, "%s\n", p.ID)
		for _, expr := range f.Expressions() {
			fmt.Fprintf(out, "  %s\n", expr)
		}
	}
	return nil
}

func outputProfilesJSON(cmd *cobra.Command, profiles []*types.Profile) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(profiles)
}

func outputProfilesTable(cmd *cobra.Command, profiles []*types.Profile) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tPatterns\n")
	fmt.Fprintf(w, "--\t----\t--------\n")

	for _, p := range profiles {
		patterns := p.Prefix + strings.Join(p.Patterns, " | ")
		if p.IgnoreCase {
			patterns += " (i)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, patterns)
	}

	return nil
}
