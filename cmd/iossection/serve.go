package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/netcfgkit/iossection/pkg/scanner"
	"github.com/netcfgkit/iossection/pkg/section"
	"github.com/netcfgkit/iossection/pkg/serve"
	"github.com/spf13/cobra"
)

var serveProfilesPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming filter server",
	Long: `Run iossection as a long-lived streaming server that accepts requests
via stdin and writes responses to stdout using NDJSON format.

Requests: extract, remove, intf_parse, intf_shorten, intf_expand, scan,
scan_batch and close. The process loads profiles once at startup and
processes requests until stdin closes, a close request arrives or
SIGTERM is received.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveProfilesPath, "profiles", "", "Custom profiles for scan requests (default: builtin)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	profiles, err := loadProfiles(serveProfilesPath, "", "")
	if err != nil {
		return err
	}

	// Scan requests run in extract mode against an in-memory store.
	core, err := scanner.NewCore(scanner.Options{
		Profiles: profiles,
		Mode:     section.ModeExtract,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := serve.NewServer(core, cmd.InOrStdin(), cmd.OutOrStdout(), serve.WithLogger(logger))
	return srv.Run(ctx)
}
