package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ohclust",
		Short: "Ontology-guided hierarchical clustering of pyroprinted isolates",
		Long: `ohclust clusters bacterial isolates by pyroprint similarity.

Isolates are compared by Pearson correlation of their pyroprints, averaged
over ITS regions and over cluster members. With a taxonomy configured, the
isolates are partitioned by their labels and clustered bottom-up through it
before the remaining thresholds are applied.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "Log level: warn, info, debug, trace (overrides config)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newValidateCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ohclust version %s\n", version)
		},
	}
}
