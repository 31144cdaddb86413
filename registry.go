package ohclust

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// ErrUnknownMetric is wrapped by every metric resolution failure.
var ErrUnknownMetric = errors.New("ohclust: unknown metric")

// MetricConfig names the metric used at each level of the data hierarchy.
type MetricConfig struct {
	Pyroprint string `yaml:"pyroprint" json:"pyroprint"`
	Region    string `yaml:"region" json:"region"`
	Isolate   string `yaml:"isolate" json:"isolate"`
	Cluster   string `yaml:"cluster" json:"cluster"`
}

// DefaultMetricConfig is Pearson correlation averaged at every level above it.
func DefaultMetricConfig() MetricConfig {
	return MetricConfig{
		Pyroprint: "pearson",
		Region:    "average",
		Isolate:   "average",
		Cluster:   "average",
	}
}

// MetricOptions are passed to leaf-level metric constructors.
type MetricOptions struct {
	Strategy Strategy
	Distance bool
	Logger   *slog.Logger
}

var (
	pyroprintMetrics = map[string]func(MetricOptions) Metric[*Pyroprint]{
		"pearson": func(o MetricOptions) Metric[*Pyroprint] {
			m := NewPearsonMetric(o.Logger)
			if o.Strategy != "" {
				m.Strategy = o.Strategy
			}
			m.Distance = o.Distance
			return m
		},
	}

	regionMetrics = map[string]func(Metric[*Pyroprint]) Metric[*Region]{
		"average": func(child Metric[*Pyroprint]) Metric[*Region] {
			return NewAverageMetric(PyroprintComparator, child)
		},
	}

	isolateMetrics = map[string]func(Metric[*Region]) Metric[*Isolate]{
		"average": func(child Metric[*Region]) Metric[*Isolate] {
			return NewAverageMetric(RegionComparator, child)
		},
	}

	clusterMetrics = map[string]func(Metric[Element]) Metric[*Cluster]{
		"average": func(child Metric[Element]) Metric[*Cluster] {
			return NewAverageMetric(ClusterComparator, child)
		},
	}
)

// MetricNames lists the registered names for each level, sorted.
func MetricNames() map[string][]string {
	return map[string][]string{
		"pyroprint": slices.Sorted(maps.Keys(pyroprintMetrics)),
		"region":    slices.Sorted(maps.Keys(regionMetrics)),
		"isolate":   slices.Sorted(maps.Keys(isolateMetrics)),
		"cluster":   slices.Sorted(maps.Keys(clusterMetrics)),
	}
}

// ValidateMetrics checks that every level names a registered metric. All
// failures are reported together.
func ValidateMetrics(cfg MetricConfig) error {
	var errs []error
	check := func(level, name string, ok bool) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s metric %q", ErrUnknownMetric, level, name))
		}
	}
	_, ok := pyroprintMetrics[cfg.Pyroprint]
	check("pyroprint", cfg.Pyroprint, ok)
	_, ok = regionMetrics[cfg.Region]
	check("region", cfg.Region, ok)
	_, ok = isolateMetrics[cfg.Isolate]
	check("isolate", cfg.Isolate, ok)
	_, ok = clusterMetrics[cfg.Cluster]
	check("cluster", cfg.Cluster, ok)
	return errors.Join(errs...)
}

// NewIsolateMetric resolves the pyroprint, region and isolate levels of cfg
// into one composed metric.
func NewIsolateMetric(cfg MetricConfig, opts MetricOptions) (Metric[*Isolate], error) {
	if err := ValidateMetrics(cfg); err != nil {
		return nil, err
	}
	pyro := pyroprintMetrics[cfg.Pyroprint](opts)
	region := regionMetrics[cfg.Region](pyro)
	return isolateMetrics[cfg.Isolate](region), nil
}

// NewClusterMetric wraps an element-level metric in the cluster level of cfg.
func NewClusterMetric(cfg MetricConfig, child Metric[Element]) (Metric[*Cluster], error) {
	build, ok := clusterMetrics[cfg.Cluster]
	if !ok {
		return nil, fmt.Errorf("%w: cluster metric %q", ErrUnknownMetric, cfg.Cluster)
	}
	return build(child), nil
}
