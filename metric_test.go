package ohclust

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarity_Better(t *testing.T) {
	tests := []struct {
		name string
		p    Polarity
		a, b float64
		want bool
	}{
		{"similarity higher wins", Similarity, 0.9, 0.5, true},
		{"similarity lower loses", Similarity, 0.5, 0.9, false},
		{"similarity tie", Similarity, 0.5, 0.5, false},
		{"distance lower wins", Distance, 0.1, 0.5, true},
		{"distance higher loses", Distance, 0.5, 0.1, false},
		{"defined beats undefined", Similarity, -1, Undefined, true},
		{"undefined never wins", Distance, Undefined, 100, false},
		{"undefined vs undefined", Similarity, Undefined, Undefined, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Better(tt.a, tt.b))
		})
	}
}

func TestPolarity_Passes(t *testing.T) {
	assert.True(t, Similarity.Passes(0.9, 0.9), "threshold is inclusive")
	assert.False(t, Similarity.Passes(0.89, 0.9))
	assert.True(t, Distance.Passes(0.1, 0.1))
	assert.False(t, Distance.Passes(0.11, 0.1))
	assert.False(t, Similarity.Passes(Undefined, -1e9))
	assert.False(t, Distance.Passes(Undefined, 1e9))
}

func TestPolarity_String(t *testing.T) {
	assert.Equal(t, "similarity", Similarity.String())
	assert.Equal(t, "distance", Distance.String())
}

func TestMetricFunc(t *testing.T) {
	m := &MetricFunc[float64]{F: func(a, b float64) float64 { return a - b }}

	assert.True(t, IsUndefined(m.Result()), "no Apply yields Undefined")

	m.Apply(3, 1)
	m.Apply(5, 1)
	assert.Equal(t, 4.0, m.Result(), "last Apply wins")
	assert.True(t, IsUndefined(m.Result()), "Result resets")
}

func TestElementMetric_SkipsIncompatible(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	m := NewElementMetric(isolateMetric(), logger)

	a := isolate("a", nil, 1, 2, 3, 4)
	b := isolate("b", nil, 2, 4, 6, 8)

	m.Apply(a, label("not-an-isolate"))
	assert.True(t, IsUndefined(m.Result()))
	assert.Contains(t, logs.String(), "incompatible elements")

	m.Apply(a, b)
	assert.InDelta(t, 1.0, m.Result(), floatTol)
}
