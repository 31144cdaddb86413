package ohclust

import (
	"log/slog"
	"math"
)

// Undefined is the result of a metric that accumulated no valid comparisons.
// It is NaN, so it never compares equal to, better than, or worse than any
// similarity or distance value. Use IsUndefined to test for it.
var Undefined = math.NaN()

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v float64) bool { return math.IsNaN(v) }

// Metric is a stateful, resettable similarity (or distance) accumulator.
//
// Apply feeds one pairwise comparison. Inputs that cannot be compared (for
// example two measurements taken under different protocols) leave the state
// untouched and are reported on the metric's logger; they are never an error.
//
// Result returns the accumulated statistic and resets the accumulator, so one
// instance can be reused across many comparisons. If nothing was accumulated,
// Result returns Undefined.
//
// Metrics are not safe for concurrent use.
type Metric[T any] interface {
	Reset()
	Apply(a, b T)
	Result() float64
}

// Polarity tells the clusterer how to read metric values.
type Polarity int

const (
	// Similarity scores: larger is closer. A pair passes threshold t when score >= t.
	Similarity Polarity = iota
	// Distance scores: smaller is closer. A pair passes threshold t when score <= t.
	Distance
)

func (p Polarity) String() string {
	if p == Distance {
		return "distance"
	}
	return "similarity"
}

// Better reports whether score a is strictly closer than score b.
// Undefined never wins, and any defined score beats Undefined.
func (p Polarity) Better(a, b float64) bool {
	if IsUndefined(a) {
		return false
	}
	if IsUndefined(b) {
		return true
	}
	if p == Distance {
		return a < b
	}
	return a > b
}

// Passes reports whether score satisfies threshold.
func (p Polarity) Passes(score, threshold float64) bool {
	if IsUndefined(score) {
		return false
	}
	if p == Distance {
		return score <= threshold
	}
	return score >= threshold
}

// MetricFunc adapts a plain pairwise function into a Metric. Each Apply
// replaces the pending value; Result returns the last applied value.
type MetricFunc[T any] struct {
	F func(a, b T) float64

	value float64
	set   bool
}

func (m *MetricFunc[T]) Reset() { m.value, m.set = 0, false }

func (m *MetricFunc[T]) Apply(a, b T) {
	m.value = m.F(a, b)
	m.set = true
}

func (m *MetricFunc[T]) Result() float64 {
	defer m.Reset()
	if !m.set {
		return Undefined
	}
	return m.value
}

// ElementMetric narrows a typed metric to one over Element values. Elements
// whose concrete type is not T are an incompatible comparison: they are
// logged and skipped.
type ElementMetric[T Element] struct {
	inner  Metric[T]
	logger *slog.Logger
}

// NewElementMetric wraps inner. A nil logger discards diagnostics.
func NewElementMetric[T Element](inner Metric[T], logger *slog.Logger) *ElementMetric[T] {
	return &ElementMetric[T]{inner: inner, logger: orDiscard(logger)}
}

func (m *ElementMetric[T]) Reset() { m.inner.Reset() }

func (m *ElementMetric[T]) Apply(a, b Element) {
	ta, okA := a.(T)
	tb, okB := b.(T)
	if !okA || !okB {
		m.logger.Warn("incompatible elements, skipping comparison",
			"a", a.Name(), "b", b.Name())
		return
	}
	m.inner.Apply(ta, tb)
}

func (m *ElementMetric[T]) Result() float64 { return m.inner.Result() }

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
