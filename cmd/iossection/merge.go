package main

import (
	"fmt"

	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <dest.db> <source.db> [source.db...]",
	Short: "Merge scan stores",
	Long: `Merge one or more scan stores into a destination store.

This is useful for combining per-site scans into one store. The destination
may be a SQLite file or a postgres:// URL; it is created if missing.

Deduplication is automatic - documents, locations and results that are
already present are only stored once.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	stats, err := store.Merge(store.MergeConfig{
		DestPath:    args[0],
		SourcePaths: args[1:],
	})
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merge complete:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  Sources processed: %d\n", stats.SourcesProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "  Documents merged: %d\n", stats.DocumentsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Results merged: %d\n", stats.ResultsMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "  Provenance merged: %d\n", stats.ProvenanceMerged)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", args[0])

	return nil
}
