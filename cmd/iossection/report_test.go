package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newReportCmd creates a fresh report command for testing
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "report",
		RunE: runReport,
	}
	cmd.Flags().StringVar(&reportDB, "db", "iossection.db", "Result store")
	cmd.Flags().StringVar(&reportFormat, "format", "human", "Output format")
	cmd.Flags().StringVar(&reportColor, "color", "never", "Color output")
	cmd.Flags().IntVar(&reportMaxLines, "max-lines", 20, "Lines shown per result")
	return cmd
}

// scanFixture scans the backup fixture into a SQLite store and returns its
// path and the backup directory.
func scanFixture(t *testing.T) (string, string) {
	t.Helper()
	resetScanFlags(t)
	dir := setupBackupDir(t)
	cmd, _, _ := newTestCmd()
	require.NoError(t, runScan(cmd, []string{dir}))
	return scanDB, dir
}

func TestReportCommand_HumanFormat(t *testing.T) {
	db, dir := scanFixture(t)

	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--db", db})
	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Result 1/2")
	assert.Contains(t, output, "Result 2/2")
	assert.Contains(t, output, "Profile: Terminal lines (ios.line)")
	assert.Contains(t, output, "File: "+filepath.Join(dir, "r1.cfg"))
	assert.Contains(t, output, "Lines: 4 of 11")
	assert.Contains(t, output, "    line vty 0 4\n")
	assert.Contains(t, output, "Error: [banner]")
	assert.NotContains(t, output, "\x1b[", "--color never")
}

func TestReportCommand_MaxLines(t *testing.T) {
	db, _ := scanFixture(t)

	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--db", db, "--max-lines", "1"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "    ... 3 more\n")
}

func TestReportCommand_TableFormat(t *testing.T) {
	db, _ := scanFixture(t)

	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--db", db, "--format", "table"})
	require.NoError(t, cmd.Execute())

	output := out.String()
	assert.Contains(t, output, "Profile")
	assert.Regexp(t, `ios\.banner\s+extract\s+1\s+0\s+1`, output)
	assert.Regexp(t, `ios\.line\s+extract\s+1\s+4\s+0`, output)
}

func TestReportCommand_JSONFormat(t *testing.T) {
	db, dir := scanFixture(t)

	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--db", db, "--format", "json"})
	require.NoError(t, cmd.Execute())

	var entries []struct {
		ProfileID string   `json:"profile_id"`
		ErrorKind string   `json:"error_kind"`
		Lines     []string `json:"lines"`
		Locations []string `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 2)

	// Sorted by source: r1.cfg before r2.cfg.
	assert.Equal(t, "ios.line", entries[0].ProfileID)
	assert.Len(t, entries[0].Lines, 4)
	assert.Equal(t, []string{filepath.Join(dir, "r1.cfg")}, entries[0].Locations)
	assert.Equal(t, "ios.banner", entries[1].ProfileID)
	assert.Equal(t, "banner", entries[1].ErrorKind)
}

func TestReportCommand_EmptyStore(t *testing.T) {
	resetScanFlags(t)
	cmd, _, _ := newTestCmd()
	require.NoError(t, runScan(cmd, []string{t.TempDir()}))

	report := newReportCmd()
	_, out, _ := newTestCmd()
	report.SetOut(out)
	report.SetArgs([]string{"--db", scanDB})
	require.NoError(t, report.Execute())
	assert.Equal(t, "No results.\n", out.String())
}

func TestReportCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{"memory store", []string{"--db", ":memory:"}, "in-memory"},
		{"missing store", []string{"--db", filepath.Join(t.TempDir(), "none.db")}, "store not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newReportCmd()
			_, out, _ := newTestCmd()
			cmd.SetOut(out)
			cmd.SetErr(out)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}

	db, _ := scanFixture(t)
	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--db", db, "--format", "yaml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestReportCommand_SARIFFormat(t *testing.T) {
	db, dir := scanFixture(t)

	cmd := newReportCmd()
	_, out, _ := newTestCmd()
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--db", db, "--format", "sarif"})
	require.NoError(t, cmd.Execute())

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region *struct {
							StartLine int `json:"startLine"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &log))
	require.Len(t, log.Runs, 1)
	assert.Len(t, log.Runs[0].Tool.Driver.Rules, 2)

	results := log.Runs[0].Results
	require.Len(t, results, 2)
	assert.Equal(t, "ios.line", results[0].RuleID)
	assert.Equal(t, "note", results[0].Level)
	assert.Equal(t, "ios.banner", results[1].RuleID)
	assert.Equal(t, "error", results[1].Level)
	require.Len(t, results[1].Locations, 1)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(dir, "r2.cfg")), results[1].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.NotNil(t, results[1].Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 2, results[1].Locations[0].PhysicalLocation.Region.StartLine)
}
