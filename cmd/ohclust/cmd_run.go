package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TrevorS/ohclust"
	"github.com/TrevorS/ohclust/internal/config"
	"github.com/TrevorS/ohclust/internal/ingest"
	"github.com/TrevorS/ohclust/internal/logging"
)

type runFlags struct {
	configs    []string
	format     string
	db         string
	csv        string
	isolates   []string
	thresholds string
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster isolates and print the results",
		Long: `Run one clustering pass per --config. Runs are independent and execute
concurrently; results are printed in the order the configs were given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.format != "text" && f.format != "json" && f.format != "xml" {
				return fmt.Errorf("invalid --format %q (valid: text, json, xml)", f.format)
			}

			cfgs := make([]*config.Config, 0, max(len(f.configs), 1))
			paths := f.configs
			if len(paths) == 0 {
				paths = []string{""}
			}
			for _, path := range paths {
				cfg, err := loadRunConfig(path, f)
				if err != nil {
					return err
				}
				cfgs = append(cfgs, cfg)
			}

			logger, cleanup := setupLogger(cmd, cfgs[0])
			defer cleanup()

			outputs := make([][]byte, len(cfgs))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, cfg := range cfgs {
				runLogger := logger.With("config", paths[i])
				g.Go(func() error {
					results, err := runOne(ctx, cfg, runLogger)
					if err != nil {
						return fmt.Errorf("%s: %w", displayName(paths[i]), err)
					}
					outputs[i], err = render(results, f.format, displayName(paths[i]), len(cfgs) > 1)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, o := range outputs {
				if _, err := out.Write(o); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&f.configs, "config", nil, "Run configuration file (repeatable)")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text, json, xml")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite measurement database (overrides config)")
	cmd.Flags().StringVar(&f.csv, "csv", "", "CSV measurement file (overrides config)")
	cmd.Flags().StringSliceVar(&f.isolates, "isolates", nil, "Isolate IDs to cluster (overrides config)")
	cmd.Flags().StringVar(&f.thresholds, "thresholds", "", "Comma-separated thresholds, alpha first (overrides config)")
	return cmd
}

func loadRunConfig(path string, f runFlags) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	switch {
	case f.db != "":
		cfg.Source.Driver, cfg.Source.Path = "sqlite", f.db
	case f.csv != "":
		cfg.Source.Driver, cfg.Source.Path = "csv", f.csv
	}
	if len(f.isolates) > 0 {
		cfg.Source.Isolates = f.isolates
	}
	if f.thresholds != "" {
		if cfg.Clustering.Thresholds, err = config.ParseThresholds(f.thresholds); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return cfg, nil
}

func setupLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, func()) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.Logging.Level
	}
	file, _ := cmd.Flags().GetString("log-file")
	if file == "" {
		file = cfg.Logging.File
	}
	logger, closeFn := logging.Setup(level, file)
	return logger, func() { _ = closeFn() }
}

// runOne loads the data of cfg and clusters it with components owned by
// this run alone.
func runOne(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ohclust.Results, error) {
	src, err := ingest.Open(cfg.Source.Driver, cfg.Source.Path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	isolates, err := ingest.Load(ctx, src, cfg.Source.Isolates)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded isolates", "count", len(isolates), "source", cfg.Source.Path)

	onto, err := cfg.BuildOntology()
	if err != nil {
		return nil, err
	}
	return ohclust.Run(ctx, isolates, onto, cfg.Engine(logger))
}

func render(results *ohclust.Results, format, name string, header bool) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "json":
		if err := json.NewEncoder(&buf).Encode(struct {
			Config  string           `json:"config"`
			Results *ohclust.Results `json:"results"`
		}{name, results}); err != nil {
			return nil, err
		}
	case "xml":
		if err := results.WriteXML(&buf); err != nil {
			return nil, err
		}
	default:
		if header {
			fmt.Fprintf(&buf, "== %s ==\n", name)
		}
		io.WriteString(&buf, results.String())
	}
	return buf.Bytes(), nil
}

func displayName(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}
