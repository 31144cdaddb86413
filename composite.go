package ohclust

import (
	"slices"
	"strings"
)

// Comparator pairs up the corresponding sub-elements of a and b and calls
// visit once per pair.
type Comparator[T, C any] func(a, b T, visit func(x, y C))

// AverageMetric is a composite metric: for every sub-element pair produced by
// its comparator it applies the child metric, collects the child's result,
// and reports the arithmetic mean of the defined child results.
type AverageMetric[T, C any] struct {
	compare Comparator[T, C]
	child   Metric[C]

	sum   float64
	count int
}

// NewAverageMetric composes child under compare.
func NewAverageMetric[T, C any](compare Comparator[T, C], child Metric[C]) *AverageMetric[T, C] {
	return &AverageMetric[T, C]{compare: compare, child: child}
}

func (m *AverageMetric[T, C]) Reset() {
	m.sum, m.count = 0, 0
	m.child.Reset()
}

func (m *AverageMetric[T, C]) Apply(a, b T) {
	m.compare(a, b, func(x, y C) {
		m.child.Apply(x, y)
		if r := m.child.Result(); !IsUndefined(r) {
			m.sum += r
			m.count++
		}
	})
}

func (m *AverageMetric[T, C]) Result() float64 {
	defer m.Reset()
	if m.count == 0 {
		return Undefined
	}
	return m.sum / float64(m.count)
}

// PyroprintComparator pairs every pyroprint of one region with every
// pyroprint of the other.
func PyroprintComparator(a, b *Region, visit func(x, y *Pyroprint)) {
	for _, pa := range a.Pyroprints {
		for _, pb := range b.Pyroprints {
			visit(pa, pb)
		}
	}
}

// RegionComparator pairs the regions two isolates have in common, in
// region-name order. Regions present in only one isolate are not compared.
func RegionComparator(a, b *Isolate, visit func(x, y *Region)) {
	regions := slices.Clone(a.Regions)
	slices.SortStableFunc(regions, func(x, y *Region) int { return strings.Compare(x.Name, y.Name) })
	for _, ra := range regions {
		for _, rb := range b.Regions {
			if rb.Name == ra.Name {
				visit(ra, rb)
				break
			}
		}
	}
}

// ClusterComparator pairs every element of one cluster with every element
// of the other, giving average linkage when used with AverageMetric.
func ClusterComparator(a, b *Cluster, visit func(x, y Element)) {
	for _, ea := range a.elements {
		for _, eb := range b.elements {
			visit(ea, eb)
		}
	}
}
