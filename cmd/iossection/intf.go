package main

import (
	"encoding/json"
	"fmt"

	"github.com/netcfgkit/iossection/pkg/intfname"
	"github.com/spf13/cobra"
)

var intfFormat string

var intfCmd = &cobra.Command{
	Use:   "intf",
	Short: "Convert interface names",
	Long:  "Convert Cisco interface names between their short and long forms",
}

var intfParseCmd = &cobra.Command{
	Use:     "parse <name>",
	Short:   "Expand a two letter abbreviation such as gi1/0/10",
	Example: "  iossection intf parse te1/1/4",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntf(cmd, args[0], intfname.Parse)
	},
}

var intfShortenCmd = &cobra.Command{
	Use:     "shorten <name>",
	Short:   "Print the short form, e.g. Gi1/0/4",
	Example: "  iossection intf shorten GigabitEthernet1/0/4",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntf(cmd, args[0], intfname.Shorten)
	},
}

var intfExpandCmd = &cobra.Command{
	Use:     "expand <name>",
	Short:   "Print the long form, e.g. GigabitEthernet1/0/4",
	Example: "  iossection intf expand Po10",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntf(cmd, args[0], intfname.Expand)
	},
}

func init() {
	intfCmd.AddCommand(intfParseCmd)
	intfCmd.AddCommand(intfShortenCmd)
	intfCmd.AddCommand(intfExpandCmd)
	intfCmd.PersistentFlags().StringVar(&intfFormat, "format", "text", "Output format: text, json")
}

func runIntf(cmd *cobra.Command, name string, convert func(string) (intfname.Interface, error)) error {
	i, err := convert(name)
	if err != nil {
		return err
	}

	switch intfFormat {
	case "json":
		return json.NewEncoder(cmd.OutOrStdout()).Encode(i)
	case "text":
		fmt.Fprintln(cmd.OutOrStdout(), i.String())
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", intfFormat)
	}
}
