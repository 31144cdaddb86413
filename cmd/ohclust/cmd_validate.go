package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TrevorS/ohclust"
	"github.com/TrevorS/ohclust/internal/config"
)

func newValidateCmd() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check run configurations without reading any data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(paths) == 0 {
				return fmt.Errorf("at least one --config is required")
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				cfg, err := config.Load(path)
				if err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				terms := 0
				if onto, _ := cfg.BuildOntology(); onto != nil {
					onto.Walk(func(*ohclust.Term, int) { terms++ })
				}
				m := cfg.Clustering.Metrics
				fmt.Fprintf(out, "%s: ok (thresholds %v, metrics %s, %d ontology terms)\n",
					path, cfg.Clustering.Thresholds,
					strings.Join([]string{m.Pyroprint, m.Region, m.Isolate, m.Cluster}, "/"), terms)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&paths, "config", nil, "Run configuration file (repeatable)")
	return cmd
}
