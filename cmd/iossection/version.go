package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/netcfgkit/iossection/pkg/rule"
	"github.com/netcfgkit/iossection/pkg/serve"
	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version of iossection together with the store schema and
serve protocol versions, which must match between cooperating installs.`,
	RunE: runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "iossection v%s\n", version)
	fmt.Fprintf(out, "Commit: %s\n", buildCommit())
	fmt.Fprintf(out, "Store schema: %d\n", store.SchemaVersion)
	fmt.Fprintf(out, "Serve protocol: %s\n", serve.Version)

	if profiles, err := rule.NewLoader().LoadBuiltinProfiles(); err == nil {
		fmt.Fprintf(out, "Builtin profiles: %d\n", len(profiles))
	}

	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

// buildCommit prefers the linker-set commit, then the VCS revision stamped
// by "go build".
func buildCommit() string {
	if commit != "" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "unknown"
}
