// Package config loads ohclust run configuration from YAML files and
// environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/ohclust"
)

// Config is one clustering run: where the data comes from, how it is
// compared, the thresholds, and the optional taxonomy.
type Config struct {
	// Source selects the raw measurement data.
	Source SourceConfig `json:"source" yaml:"source"`

	// Clustering contains thresholds and metric selection.
	Clustering ClusteringConfig `json:"clustering" yaml:"clustering"`

	// Ontology is the taxonomy used to partition isolates before clustering.
	// Nil runs plain agglomerative clustering.
	Ontology *ohclust.TermSpec `json:"ontology,omitempty" yaml:"ontology,omitempty"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SourceConfig locates the raw measurement rows.
type SourceConfig struct {
	// Driver is "sqlite" or "csv".
	Driver string `json:"driver" yaml:"driver" validate:"required,oneof=sqlite csv"`

	// Path is the database or CSV file.
	Path string `json:"path" yaml:"path" validate:"required"`

	// Isolates restricts the run to these isolate IDs. Empty means all.
	Isolates []string `json:"isolates,omitempty" yaml:"isolates,omitempty" validate:"dive,required"`
}

// ClusteringConfig configures the clustering engine.
type ClusteringConfig struct {
	// Thresholds in application order. The first is the ontology (alpha) threshold.
	Thresholds []float64 `json:"thresholds" yaml:"thresholds" validate:"required,min=1"`

	// Metrics names the metric for each level of the data hierarchy.
	Metrics ohclust.MetricConfig `json:"metrics" yaml:"metrics"`

	// Distance compares by 1 − correlation instead of correlation.
	Distance bool `json:"distance" yaml:"distance"`

	// Strategy is the Pearson accumulation strategy: "sum" or "stable".
	Strategy string `json:"strategy" yaml:"strategy" validate:"omitempty,oneof=sum stable"`

	// Workers for pair-score precomputation. 0 or 1 disables it.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug" or "trace".
	// "trace" logs metric accumulator state for every comparison.
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=warn info debug trace"`

	// File, when set, also receives every log record as JSON.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns a Config with sensible defaults and no data source.
func Default() *Config {
	return &Config{
		Source: SourceConfig{Driver: "sqlite"},
		Clustering: ClusteringConfig{
			Thresholds: []float64{0.995, 0.99},
			Metrics:    ohclust.DefaultMetricConfig(),
			Strategy:   string(ohclust.StrategySum),
			Workers:    1,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults and applies
// environment overrides. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints, resolves every metric name, and
// builds the ontology once so that taxonomy errors surface before any data
// is read.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := ohclust.ValidateMetrics(c.Clustering.Metrics); err != nil {
		return err
	}
	if _, err := c.BuildOntology(); err != nil {
		return err
	}
	return nil
}

// BuildOntology returns a fresh ontology for one run, or nil when none is
// configured.
func (c *Config) BuildOntology() (*ohclust.Ontology, error) {
	if c.Ontology == nil {
		return nil, nil
	}
	return ohclust.NewOntology(*c.Ontology)
}

// Engine converts the clustering section into a library config.
func (c *Config) Engine(logger *slog.Logger) ohclust.Config {
	cfg := ohclust.DefaultConfig()
	cfg.Thresholds = c.Clustering.Thresholds
	cfg.Metrics = c.Clustering.Metrics
	cfg.Distance = c.Clustering.Distance
	cfg.Strategy = ohclust.Strategy(c.Clustering.Strategy)
	cfg.Workers = c.Clustering.Workers
	cfg.Logger = logger
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("OHCLUST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OHCLUST_DB"); v != "" {
		cfg.Source.Driver = "sqlite"
		cfg.Source.Path = v
	}
	if v := os.Getenv("OHCLUST_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OHCLUST_WORKERS: %w", err)
		}
		cfg.Clustering.Workers = n
	}
	if v := os.Getenv("OHCLUST_THRESHOLDS"); v != "" {
		ts, err := ParseThresholds(v)
		if err != nil {
			return fmt.Errorf("OHCLUST_THRESHOLDS: %w", err)
		}
		cfg.Clustering.Thresholds = ts
	}
	return nil
}

// ParseThresholds parses a comma-separated threshold list, keeping its order.
func ParseThresholds(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid threshold %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}
