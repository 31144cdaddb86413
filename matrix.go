package ohclust

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// MatrixMetric looks element pairs up in a precomputed symmetric score
// matrix. Elements are located by name. A pair with an unknown name is an
// incompatible comparison and is skipped.
type MatrixMetric struct {
	scores *mat.SymDense
	index  map[string]int
	logger *slog.Logger

	value float64
	set   bool
}

// NewMatrixMetric builds a metric over scores, where names[i] identifies
// row and column i. A nil logger discards diagnostics.
func NewMatrixMetric(scores *mat.SymDense, names []string, logger *slog.Logger) (*MatrixMetric, error) {
	if n := scores.SymmetricDim(); n != len(names) {
		return nil, fmt.Errorf("ohclust: matrix dimension %d does not match %d names", n, len(names))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("ohclust: duplicate element name %q in matrix", name)
		}
		index[name] = i
	}
	return &MatrixMetric{scores: scores, index: index, logger: orDiscard(logger)}, nil
}

func (m *MatrixMetric) Reset() { m.value, m.set = 0, false }

func (m *MatrixMetric) Apply(a, b Element) {
	i, okA := m.index[a.Name()]
	j, okB := m.index[b.Name()]
	if !okA || !okB {
		m.logger.Warn("element not in similarity matrix, skipping comparison",
			"a", a.Name(), "b", b.Name())
		return
	}
	m.value = m.scores.At(i, j)
	m.set = true
}

func (m *MatrixMetric) Result() float64 {
	defer m.Reset()
	if !m.set {
		return Undefined
	}
	return m.value
}
