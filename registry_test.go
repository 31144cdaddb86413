package ohclust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricNames(t *testing.T) {
	names := MetricNames()
	assert.Equal(t, []string{"pearson"}, names["pyroprint"])
	assert.Equal(t, []string{"average"}, names["cluster"])
	assert.Len(t, names, 4)
}

func TestValidateMetrics(t *testing.T) {
	assert.NoError(t, ValidateMetrics(DefaultMetricConfig()))

	err := ValidateMetrics(MetricConfig{Pyroprint: "pearson", Region: "average", Isolate: "median", Cluster: "single"})
	require.ErrorIs(t, err, ErrUnknownMetric)
	assert.Contains(t, err.Error(), `isolate metric "median"`)
	assert.Contains(t, err.Error(), `cluster metric "single"`)
}

func TestNewIsolateMetric_Options(t *testing.T) {
	a := isolate("a", nil, 1, 2, 3, 4)
	b := isolate("b", nil, 1, 3, 2, 4)

	sim := mustIsolateMetric(t, MetricOptions{Strategy: StrategyStable})
	sim.Apply(a, b)
	r := sim.Result()

	dist := mustIsolateMetric(t, MetricOptions{Distance: true})
	dist.Apply(a, b)
	assert.InDelta(t, 1-r, dist.Result(), floatTol)
}

func TestNewClusterMetric_Unknown(t *testing.T) {
	_, err := NewClusterMetric(MetricConfig{Cluster: "complete"}, newElementMetric())
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
