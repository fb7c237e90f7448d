package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/netcfgkit/iossection/pkg/writer"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	sectionPatterns     []string
	sectionProfile      string
	sectionProfilesPath string
	sectionIgnoreCase   bool
	sectionPrefix       string
	sectionOutput       string
	sectionFormat       string
	sectionColor        string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|->",
	Short: "Print the sections whose header matches",
	Long: `Print every section whose header line matches one of the patterns.

Patterns are anchored at both ends. Banner headers are normalized so the
delimiter is the ETX control byte.`,
	Example: `  iossection extract -e 'interface GigabitEthernet1/0/\d+' running-config.txt
  iossection extract --profile ios.line - < running-config.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSection(cmd, args, section.ModeExtract)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <file|->",
	Short: "Print the configuration without the sections whose header matches",
	Long: `Print the configuration with every matching section dropped.

Consecutive "!" separator lines left behind are collapsed into one.`,
	Example: `  iossection remove -e 'banner \S+ \^C' running-config.txt
  iossection remove --prefix 'interface\s+' -e 'Vlan\d+' -o stripped.txt running-config.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSection(cmd, args, section.ModeRemove)
	},
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, removeCmd} {
		c.Flags().StringArrayVarP(&sectionPatterns, "pattern", "e", nil, "Header pattern (repeatable)")
		c.Flags().StringVar(&sectionProfile, "profile", "", "Profile ID supplying patterns, ignore-case and prefix")
		c.Flags().StringVar(&sectionProfilesPath, "profiles", "", "Custom profile file or directory for --profile")
		c.Flags().BoolVarP(&sectionIgnoreCase, "ignore-case", "i", false, "Match header lines case-insensitively")
		c.Flags().StringVar(&sectionPrefix, "prefix", "", `Prepended to every pattern, e.g. 'interface\s+'`)
		c.Flags().StringVarP(&sectionOutput, "output", "o", "", "Also write the result to this file")
		c.Flags().StringVar(&sectionFormat, "format", "text", "Output format: text, json")
		c.Flags().StringVar(&sectionColor, "color", "auto", "Color output: auto, always, never")
	}
}

// sectionOutputJSON is the --format json document.
type sectionOutputJSON struct {
	Mode       string   `json:"mode"`
	Patterns   []string `json:"patterns"`
	InputLines int      `json:"input_lines"`
	Lines      []string `json:"lines"`
	OutputFile string   `json:"output_file,omitempty"`
}

func runSection(cmd *cobra.Command, args []string, mode section.Mode) error {
	logger := newLogger(cmd)

	cfg, err := sectionConfig()
	if err != nil {
		return err
	}

	f, err := section.Compile(cfg)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	lines := section.SplitLines(string(data))

	out, err := f.Scan(lines, mode)
	if err != nil {
		var bannerErr *section.BannerError
		if errors.As(err, &bannerErr) {
			logger.Error("unterminated banner", "line", bannerErr.Line+1, "text", bannerErr.Text)
		}
		return err
	}
	logger.Debug("scanned", "mode", mode, "input", len(lines), "output", len(out))

	// A failed file write is reported after the result has been printed.
	writeErr := writer.WriteLines(context.Background(), sectionOutput, out)
	if writeErr != nil {
		logger.Error("writing result file", "path", sectionOutput, "error", writeErr)
	}

	switch sectionFormat {
	case "json":
		doc := sectionOutputJSON{
			Mode:       mode.String(),
			Patterns:   f.Config().Patterns,
			InputLines: len(lines),
			Lines:      out,
		}
		if writeErr == nil && len(out) > 0 {
			doc.OutputFile = sectionOutput
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return err
		}
	case "text":
		printLines(cmd.OutOrStdout(), out, newLineStyles(colorEnabled(sectionColor)))
	default:
		return fmt.Errorf("unknown output format: %s", sectionFormat)
	}

	return writeErr
}

// sectionConfig merges --profile with the explicit flags. Explicit patterns
// are added to the profile's; --prefix replaces the profile prefix.
func sectionConfig() (section.Config, error) {
	cfg := section.Config{
		IgnoreCase: sectionIgnoreCase,
		Prefix:     sectionPrefix,
	}

	if sectionProfile != "" {
		p, err := findProfile(sectionProfilesPath, sectionProfile)
		if err != nil {
			return cfg, err
		}
		cfg = p.SectionConfig()
		cfg.IgnoreCase = cfg.IgnoreCase || sectionIgnoreCase
		if sectionPrefix != "" {
			cfg.Prefix = sectionPrefix
		}
	}

	cfg.Patterns = append(cfg.Patterns, sectionPatterns...)
	if len(cfg.Patterns) == 0 {
		return cfg, fmt.Errorf("no patterns: use -e/--pattern or --profile")
	}
	return cfg, nil
}

// findProfile looks id up among the custom profiles at path, or the builtin
// profiles when path is empty.
func findProfile(path, id string) (*types.Profile, error) {
	profiles, err := loadProfiles(path, "", "")
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown profile: %s", id)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

// lineStyles holds color formatters for configuration text.
type lineStyles struct {
	header    *color.Color
	banner    *color.Color
	separator *color.Color
}

func newLineStyles(enabled bool) *lineStyles {
	s := &lineStyles{
		header:    color.New(color.Bold, color.FgHiBlue),
		banner:    color.New(color.FgYellow),
		separator: color.New(color.FgHiBlack),
	}
	if !enabled {
		s.header.DisableColor()
		s.banner.DisableColor()
		s.separator.DisableColor()
	} else {
		s.header.EnableColor()
		s.banner.EnableColor()
		s.separator.EnableColor()
	}
	return s
}

// colorEnabled resolves --color. auto colors only a terminal without NO_COLOR.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

func printLines(w io.Writer, lines []string, s *lineStyles) {
	inBanner := false
	for _, line := range lines {
		switch {
		case inBanner:
			if section.IsBannerTerminator(line) {
				inBanner = false
			}
			fmt.Fprintln(w, s.banner.Sprint(line))
		case section.IsBannerHeader(line):
			inBanner = true
			fmt.Fprintln(w, s.header.Sprint(line))
		case line == section.Separator:
			fmt.Fprintln(w, s.separator.Sprint(line))
		case section.IsContinuation(line) || line == "":
			fmt.Fprintln(w, line)
		default:
			fmt.Fprintln(w, s.header.Sprint(line))
		}
	}
}
