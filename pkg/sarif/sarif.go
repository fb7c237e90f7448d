// Package sarif renders section profile results as a SARIF 2.1.0 log, so
// configuration audits can be uploaded to code scanning dashboards.
package sarif

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/netcfgkit/iossection/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI   = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version     = "2.1.0"
	ToolName    = "iossection"
	ToolVersion = "0.1.0"
)

// Levels used for results.
const (
	LevelError = "error"
	LevelNote  = "note"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes a section profile.
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result is one profile run against one document.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region points at a line. Only failures carry one.
type Region struct {
	StartLine int      `json:"startLine"`
	Snippet   *Snippet `json:"snippet,omitempty"`
}

// Snippet contains the offending text
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a new SARIF report with initialized structure
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules:   []Rule{},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddProfile registers a profile as a SARIF rule.
func (r *Report) AddProfile(p *types.Profile) {
	desc := p.Description
	if desc == "" {
		desc = p.Name
	}
	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, Rule{
		ID:               p.ID,
		Name:             p.Name,
		ShortDescription: ShortDescription{Text: strings.TrimSpace(desc)},
	})
}

// AddResult adds a profile result found at every path in paths (the
// result's own Source when paths is empty). Failed runs are errors pointing
// at the offending line; extract runs that selected nothing are skipped.
// It reports whether the result was added.
func (r *Report) AddResult(res *types.Result, paths []string) bool {
	if !res.Failed() && res.Mode == "extract" && len(res.Lines) == 0 {
		return false
	}
	if len(paths) == 0 {
		paths = []string{res.Source}
	}

	out := Result{
		RuleID:    res.ProfileID,
		Level:     LevelNote,
		Message:   Message{Text: message(res)},
		Locations: make([]Location, 0, len(paths)),
	}
	if res.Failed() {
		out.Level = LevelError
	}

	for _, p := range paths {
		loc := Location{PhysicalLocation: PhysicalLocation{
			ArtifactLocation: ArtifactLocation{URI: formatFileURI(p)},
		}}
		if res.Failed() && res.ErrorLine > 0 {
			loc.PhysicalLocation.Region = &Region{StartLine: res.ErrorLine}
		}
		out.Locations = append(out.Locations, loc)
	}

	r.Runs[0].Results = append(r.Runs[0].Results, out)
	return true
}

func message(res *types.Result) string {
	switch {
	case res.Failed():
		return fmt.Sprintf("%s failed (%s): %s", res.ProfileID, res.ErrorKind, res.Error)
	case res.Mode == "extract":
		return fmt.Sprintf("%s selected %d of %d lines", res.ProfileID, len(res.Lines), res.InputLines)
	default:
		return fmt.Sprintf("%s kept %d of %d lines", res.ProfileID, len(res.Lines), res.InputLines)
	}
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		// Normalize path separators for URI format
		path = filepath.ToSlash(path)
		// Ensure path starts with /
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	// Relative paths stay as-is
	return filepath.ToSlash(path)
}
