package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/writer"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerConfig = `hostname r1
!
interface GigabitEthernet1/0/1
 description uplink
!
line con 0
 logging synchronous
line vty 0 4
 transport input ssh
!
end
`

func resetSectionFlags() {
	sectionPatterns = nil
	sectionProfile = ""
	sectionProfilesPath = ""
	sectionIgnoreCase = false
	sectionPrefix = ""
	sectionOutput = ""
	sectionFormat = "text"
	sectionColor = "never"
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "running-config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestCmd() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

func TestRunSection_Extract(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{`line\s+\S+\s+.*`}

	cmd, out, _ := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.NoError(t, err)

	assert.Equal(t, "line con 0\n logging synchronous\nline vty 0 4\n transport input ssh\n", out.String())
}

func TestRunSection_RemoveFromStdin(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{"GigabitEthernet1/0/1"}
	sectionPrefix = `interface\s+`

	cmd, out, _ := newTestCmd()
	cmd.SetIn(strings.NewReader(routerConfig))
	err := runSection(cmd, []string{"-"}, section.ModeRemove)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"hostname r1",
		"!",
		"line con 0",
		" logging synchronous",
		"line vty 0 4",
		" transport input ssh",
		"!",
		"end",
	}, strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n"))
}

func TestRunSection_Profile(t *testing.T) {
	resetSectionFlags()
	sectionProfile = "ios.line"

	cmd, out, _ := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "line vty 0 4\n transport input ssh\n")
	assert.NotContains(t, out.String(), "hostname")
}

func TestRunSection_UnknownProfile(t *testing.T) {
	resetSectionFlags()
	sectionProfile = "no.such.profile"

	cmd, _, _ := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestRunSection_JSON(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{"hostname .*"}
	sectionFormat = "json"

	cmd, out, _ := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.NoError(t, err)

	var doc sectionOutputJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "extract", doc.Mode)
	assert.Equal(t, []string{"hostname .*"}, doc.Patterns)
	assert.Equal(t, 11, doc.InputLines)
	assert.Equal(t, []string{"hostname r1"}, doc.Lines)
	assert.Empty(t, doc.OutputFile)
}

func TestRunSection_OutputFile(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{"hostname .*"}
	sectionOutput = filepath.Join(t.TempDir(), "out.txt")

	cmd, out, _ := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.NoError(t, err)

	data, err := os.ReadFile(sectionOutput)
	require.NoError(t, err)
	assert.Equal(t, "hostname r1"+writer.LineSeparator(), string(data))
	assert.Equal(t, "hostname r1\n", out.String())
}

func TestRunSection_OutputFileFailure(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{"hostname .*"}
	sectionOutput = filepath.Join(t.TempDir(), "missing", "out.txt")

	cmd, out, errOut := newTestCmd()
	err := runSection(cmd, []string{writeConfig(t, routerConfig)}, section.ModeExtract)
	require.Error(t, err)
	assert.True(t, errors.Is(err, writer.ErrWrite))

	// The result is still printed.
	assert.Equal(t, "hostname r1\n", out.String())
	assert.Contains(t, errOut.String(), "writing result file")
}

func TestRunSection_Errors(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		config   string
		format   string
		target   error
		contains string
	}{
		{
			name:     "no patterns",
			config:   routerConfig,
			contains: "no patterns",
		},
		{
			name:     "invalid pattern",
			patterns: []string{"([bad"},
			config:   routerConfig,
			target:   section.ErrInvalidPattern,
		},
		{
			name:     "unterminated banner",
			patterns: []string{`banner motd.*`},
			config:   "banner motd ^C\nno terminator\n",
			target:   section.ErrUnterminatedBanner,
		},
		{
			name:     "unknown format",
			patterns: []string{"end"},
			config:   routerConfig,
			format:   "xml",
			contains: "unknown output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetSectionFlags()
			sectionPatterns = tt.patterns
			if tt.format != "" {
				sectionFormat = tt.format
			}

			cmd, out, _ := newTestCmd()
			err := runSection(cmd, []string{writeConfig(t, tt.config)}, section.ModeExtract)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
				assert.Empty(t, out.String())
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestRunSection_MissingInput(t *testing.T) {
	resetSectionFlags()
	sectionPatterns = []string{"end"}

	cmd, _, _ := newTestCmd()
	err := runSection(cmd, []string{filepath.Join(t.TempDir(), "nope.txt")}, section.ModeRemove)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading input")
}

func TestPrintLines_Color(t *testing.T) {
	lines := []string{"banner motd \x03", "  welcome", "\x03", "!", "interface Vlan1", " shutdown"}

	var plain bytes.Buffer
	printLines(&plain, lines, newLineStyles(false))
	assert.Equal(t, strings.Join(lines, "\n")+"\n", plain.String())

	var colored bytes.Buffer
	printLines(&colored, lines, newLineStyles(true))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.Contains(t, colored.String(), "\n shutdown\n", "body lines are not styled")
}

func TestExtractRemoveCommands_Registered(t *testing.T) {
	for _, name := range []string{"extract", "remove"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
		assert.NotNil(t, cmd.Flags().Lookup("pattern"))
		assert.NotNil(t, cmd.Flags().ShorthandLookup("i"))
	}
}
