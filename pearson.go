package ohclust

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/ohclust/internal/logging"
)

// Strategy selects how PearsonMetric accumulates.
type Strategy string

const (
	// StrategySum accumulates running sums in a single pass:
	//
	//	(n·Σab − Σa·Σb) / sqrt((n·Σa² − (Σa)²)(n·Σb² − (Σb)²))
	StrategySum Strategy = "sum"

	// StrategyStable keeps the peaks and computes residuals around the mean:
	//
	//	Σ(a−ā)(b−b̄) / sqrt(Σ(a−ā)²·Σ(b−b̄)²)
	StrategyStable Strategy = "stable"
)

// PearsonMetric computes the Pearson correlation between pyroprints.
// Successive Apply calls accumulate peaks as if the pyroprints were
// concatenated. In distance mode Result returns 1 − correlation.
//
// When every accumulated peak on either side is the same value the variance
// is zero and Result returns Undefined. Constancy is tracked exactly rather
// than read off the denominator, which rarely rounds to zero.
type PearsonMetric struct {
	Strategy Strategy
	Distance bool

	logger *slog.Logger

	n                   int
	sumA, sumB          float64
	sumAA, sumBB, sumAB float64
	peaksA, peaksB      []float64

	firstA, firstB float64
	varyA, varyB   bool
}

// NewPearsonMetric returns a similarity-mode metric using StrategySum.
// A nil logger discards diagnostics.
func NewPearsonMetric(logger *slog.Logger) *PearsonMetric {
	return &PearsonMetric{Strategy: StrategySum, logger: orDiscard(logger)}
}

func (m *PearsonMetric) log() *slog.Logger {
	if m.logger == nil {
		m.logger = orDiscard(nil)
	}
	return m.logger
}

func (m *PearsonMetric) Reset() {
	m.n = 0
	m.sumA, m.sumB = 0, 0
	m.sumAA, m.sumBB, m.sumAB = 0, 0, 0
	m.peaksA = m.peaksA[:0]
	m.peaksB = m.peaksB[:0]
	m.firstA, m.firstB = 0, 0
	m.varyA, m.varyB = false, false
}

func (m *PearsonMetric) Apply(a, b *Pyroprint) {
	if !a.SameProtocol(b) {
		m.log().Warn("pyroprints have different protocols",
			"a", a.Name(), "b", b.Name())
		return
	}

	for i := range a.Peaks {
		pa, pb := a.Peaks[i], b.Peaks[i]
		if m.n == 0 {
			m.firstA, m.firstB = pa, pb
		}
		m.varyA = m.varyA || pa != m.firstA
		m.varyB = m.varyB || pb != m.firstB
		m.sumA += pa
		m.sumB += pb
		if m.Strategy == StrategyStable {
			m.peaksA = append(m.peaksA, pa)
			m.peaksB = append(m.peaksB, pb)
		} else {
			m.sumAA += pa * pa
			m.sumBB += pb * pb
			m.sumAB += pa * pb
		}
		m.n++
	}
}

func (m *PearsonMetric) Result() float64 {
	defer m.Reset()

	if l := m.log(); l.Enabled(context.Background(), logging.LevelTrace) {
		l.Log(context.Background(), logging.LevelTrace, "pearson state",
			"n", m.n, "sum_a", m.sumA, "sum_b", m.sumB,
			"sum_aa", m.sumAA, "sum_bb", m.sumBB, "sum_ab", m.sumAB)
	}

	if m.n == 0 || !m.varyA || !m.varyB {
		return Undefined
	}

	var r float64
	if m.Strategy == StrategyStable {
		r = m.stableSimilarity()
	} else {
		r = m.sumSimilarity()
	}
	if IsUndefined(r) {
		return Undefined
	}
	if m.Distance {
		return 1 - r
	}
	return r
}

func (m *PearsonMetric) sumSimilarity() float64 {
	n := float64(m.n)
	numerator := n*m.sumAB - m.sumA*m.sumB
	denomA := n*m.sumAA - m.sumA*m.sumA
	denomB := n*m.sumBB - m.sumB*m.sumB
	return ratio(numerator, denomA*denomB)
}

func (m *PearsonMetric) stableSimilarity() float64 {
	meanA := stat.Mean(m.peaksA, nil)
	meanB := stat.Mean(m.peaksB, nil)

	var coVar, varA, varB float64
	for i := range m.peaksA {
		residA := m.peaksA[i] - meanA
		residB := m.peaksB[i] - meanB
		coVar += residA * residB
		varA += residA * residA
		varB += residB * residB
	}
	return ratio(coVar, varA*varB)
}

// ratio returns num/sqrt(denomSq), or Undefined when the denominator is not
// a positive finite number.
func ratio(num, denomSq float64) float64 {
	if !(denomSq > 0) || math.IsInf(denomSq, 1) {
		return Undefined
	}
	return num / math.Sqrt(denomSq)
}

func (m *PearsonMetric) String() string {
	mode := "similarity"
	if m.Distance {
		mode = "distance"
	}
	return fmt.Sprintf("pearson(%s, %s)", m.Strategy, mode)
}
