package ohclust

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrDuplicateIsolate is returned when two isolates passed to [Run] share an ID.
var ErrDuplicateIsolate = errors.New("ohclust: duplicate isolate ID")

// Config controls a clustering run.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Thresholds are applied in the given order and never sorted. With an
	// ontology, Thresholds[0] (alpha) governs merging inside the taxonomy and
	// every later threshold refines the alpha result. Must not be empty.
	Thresholds []float64

	// Metrics names the metric used at each level of the data hierarchy.
	// Default: [DefaultMetricConfig].
	Metrics MetricConfig

	// Distance switches the pyroprint metric to 1 − correlation and the
	// clusterer to merge while score <= threshold. Default: false.
	Distance bool

	// Strategy selects single-pass or two-pass Pearson accumulation.
	// Default: StrategySum.
	Strategy Strategy

	// Workers, when > 1, precomputes all isolate-pair scores on that many
	// goroutines before clustering. Clustering itself is always sequential
	// and produces the same result either way. Default: 1.
	Workers int

	// Logger receives diagnostics and merge tracing. Verbosity is controlled
	// by the logger's handler level. Default: discard.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with reasonable defaults and no thresholds.
func DefaultConfig() Config {
	return Config{
		Metrics:  DefaultMetricConfig(),
		Strategy: StrategySum,
		Workers:  1,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	def := DefaultMetricConfig()
	if cfg.Metrics.Pyroprint == "" {
		cfg.Metrics.Pyroprint = def.Pyroprint
	}
	if cfg.Metrics.Region == "" {
		cfg.Metrics.Region = def.Region
	}
	if cfg.Metrics.Isolate == "" {
		cfg.Metrics.Isolate = def.Isolate
	}
	if cfg.Metrics.Cluster == "" {
		cfg.Metrics.Cluster = def.Cluster
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySum
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	cfg.Logger = orDiscard(cfg.Logger)
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if len(cfg.Thresholds) == 0 {
		return ErrNoThresholds
	}
	for i, t := range cfg.Thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("ohclust: Thresholds[%d] must be finite, got %f", i, t)
		}
	}
	if cfg.Strategy != StrategySum && cfg.Strategy != StrategyStable {
		return fmt.Errorf("ohclust: Strategy must be %q or %q, got %q", StrategySum, StrategyStable, cfg.Strategy)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("ohclust: Workers must be >= 1, got %d", cfg.Workers)
	}
	return ValidateMetrics(cfg.Metrics)
}

// Polarity returns the polarity implied by cfg.Distance.
func (cfg Config) Polarity() Polarity {
	if cfg.Distance {
		return Distance
	}
	return Similarity
}

// Run clusters isolates under cfg. With a nil ontology every threshold is
// applied in turn to the isolates as singletons; otherwise the run is
// ontology-guided (see [OHClusterer]). The ontology is mutated: isolates
// are assigned to it and its per-term caches are filled.
//
// Returns an error if the config is invalid, if two isolates share an ID or,
// with an ontology, if no clusters are formed at its root.
func Run(ctx context.Context, isolates []*Isolate, ontology *Ontology, cfg Config) (*Results, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(isolates))
	for _, iso := range isolates {
		if _, dup := seen[iso.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIsolate, iso.Name())
		}
		seen[iso.Name()] = struct{}{}
	}

	opts := MetricOptions{Strategy: cfg.Strategy, Distance: cfg.Distance, Logger: cfg.Logger}
	newElementMetric := func() Metric[Element] {
		m, _ := NewIsolateMetric(cfg.Metrics, opts) // validated above
		return NewElementMetric(m, cfg.Logger)
	}

	elementMetric := newElementMetric()
	if cfg.Workers > 1 && len(isolates) > 1 {
		elems := make([]Element, len(isolates))
		names := make([]string, len(isolates))
		for i, iso := range isolates {
			elems[i] = iso
			names[i] = iso.Name()
		}
		scores, err := ComputeSimilarityMatrixParallel(ctx, elems, newElementMetric, cfg.Workers)
		if err != nil {
			return nil, fmt.Errorf("ohclust: precomputing pair scores: %w", err)
		}
		mm, err := NewMatrixMetric(scores, names, cfg.Logger)
		if err != nil {
			return nil, err
		}
		elementMetric = mm
	}

	clusterMetric, err := NewClusterMetric(cfg.Metrics, elementMetric)
	if err != nil {
		return nil, err
	}

	clusterer := NewClusterer(clusterMetric, WithPolarity(cfg.Polarity()), WithLogger(cfg.Logger))
	cfg.Logger.Info("clustering",
		"isolates", len(isolates), "thresholds", cfg.Thresholds,
		"polarity", clusterer.Polarity(), "ontology", ontology != nil)

	return NewOHClusterer(clusterer, ontology).Cluster(Singletons(isolates), cfg.Thresholds)
}
