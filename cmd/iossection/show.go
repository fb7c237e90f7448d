package main

import (
	"fmt"
	"strings"

	"github.com/netcfgkit/iossection/pkg/datastore"
	"github.com/netcfgkit/iossection/pkg/store"
	"github.com/netcfgkit/iossection/pkg/types"
	"github.com/spf13/cobra"
)

var showDatastore string

var showCmd = &cobra.Command{
	Use:   "show <doc-id>",
	Short: "Print a configuration kept in a datastore",
	Long: `Print a configuration document kept by "scan --store-documents".

The document ID may be abbreviated to any unique prefix, such as the short
form printed by "report".`,
	Example: `  iossection show --datastore site.ds 3f2a9c1b07de`,
	Args:    cobra.ExactArgs(1),
	RunE:    runShow,
}

func init() {
	showCmd.Flags().StringVar(&showDatastore, "datastore", "iossection.ds", "Datastore directory")
}

func runShow(cmd *cobra.Command, args []string) error {
	if !datastore.IsDatastore(showDatastore) {
		return fmt.Errorf("not a datastore: %s", showDatastore)
	}

	ds, err := datastore.Open(showDatastore, datastore.Options{})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer ds.Close()

	if ds.Documents == nil {
		return fmt.Errorf("datastore %s keeps no documents (scan with --store-documents)", showDatastore)
	}

	id, err := resolveDocID(ds.Store, args[0])
	if err != nil {
		return err
	}

	content, err := ds.Documents.Get(id)
	if err != nil {
		return err
	}

	provs, err := ds.Store.GetProvenance(id)
	if err != nil {
		return fmt.Errorf("retrieving provenance: %w", err)
	}
	for _, p := range provs {
		fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", p.Path())
	}

	_, err = cmd.OutOrStdout().Write(content)
	return err
}

// resolveDocID expands a unique hex prefix to a recorded document ID.
func resolveDocID(s store.Store, prefix string) (types.DocID, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) == 64 {
		return types.ParseDocID(prefix)
	}

	docs, err := s.GetDocuments()
	if err != nil {
		return types.DocID{}, fmt.Errorf("listing documents: %w", err)
	}

	var matches []types.DocID
	for _, d := range docs {
		if strings.HasPrefix(d.ID.Hex(), prefix) {
			matches = append(matches, d.ID)
		}
	}

	switch len(matches) {
	case 0:
		return types.DocID{}, fmt.Errorf("no document matches %s", prefix)
	case 1:
		return matches[0], nil
	default:
		return types.DocID{}, fmt.Errorf("ambiguous document prefix %s (%d matches)", prefix, len(matches))
	}
}
