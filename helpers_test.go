package ohclust

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const floatTol = 1e-10

// label is a minimal Element for tests that only need names.
type label string

func (l label) Name() string { return string(l) }

// pairScores builds a cluster metric (average linkage) over a symmetric
// score table, plus one singleton per name. Pairs missing from scores get fill.
func pairScores(t *testing.T, names []string, scores map[[2]string]float64, fill float64) (*AverageMetric[*Cluster, Element], []*Cluster) {
	t.Helper()
	elems := make([]label, len(names))
	for i, name := range names {
		elems[i] = label(name)
	}
	return scoreTable(t, names, scores, fill), Singletons(elems)
}

func scoreTable(t *testing.T, names []string, scores map[[2]string]float64, fill float64) *AverageMetric[*Cluster, Element] {
	t.Helper()
	n := len(names)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := fill
			if i == j {
				v = 1
			} else if s, ok := scores[[2]string{names[i], names[j]}]; ok {
				v = s
			} else if s, ok := scores[[2]string{names[j], names[i]}]; ok {
				v = s
			}
			m.SetSym(i, j, v)
		}
	}
	mm, err := NewMatrixMetric(m, names, nil)
	require.NoError(t, err)
	return NewAverageMetric(ClusterComparator, Metric[Element](mm))
}

// memberNames returns the sorted element names of c.
func memberNames(c *Cluster) []string {
	out := make([]string, 0, c.Size())
	for _, e := range c.Elements() {
		out = append(out, e.Name())
	}
	slices.Sort(out)
	return out
}

// partitionOf renders clusters as sorted "a,b" strings, sorted, so that
// partitions can be compared regardless of cluster order.
func partitionOf(clusters []*Cluster) []string {
	out := make([]string, len(clusters))
	for i, c := range clusters {
		out[i] = strings.Join(memberNames(c), ",")
	}
	slices.Sort(out)
	return out
}

func pyro(id int, peaks ...float64) *Pyroprint {
	p := NewPyroprint(id, "A1")
	for _, v := range peaks {
		p.AddDispensation("A", v)
	}
	return p
}

// isolate builds a single-region isolate with one pyroprint.
func isolate(id string, labels []string, peaks ...float64) *Isolate {
	return &Isolate{
		ID:      id,
		Labels:  labels,
		Regions: []*Region{{Name: "16-23", Pyroprints: []*Pyroprint{pyro(1, peaks...)}}},
	}
}

// randomIsolates generates n isolates of `length` peaks drawn around a few
// shared profiles so that some pairs correlate strongly.
func randomIsolates(n, length int, seed int64) []*Isolate {
	rng := rand.New(rand.NewSource(seed))
	profiles := make([][]float64, 3)
	for p := range profiles {
		profiles[p] = make([]float64, length)
		for i := range profiles[p] {
			profiles[p][i] = rng.Float64() * 100
		}
	}
	out := make([]*Isolate, n)
	for k := range out {
		base := profiles[k%len(profiles)]
		peaks := make([]float64, length)
		for i := range peaks {
			peaks[i] = base[i] + rng.NormFloat64()*5
		}
		out[k] = isolate(fmt.Sprintf("iso-%02d", k), nil, peaks...)
	}
	return out
}

// isolateMetric is the default Pearson/average/average isolate metric.
func isolateMetric() Metric[*Isolate] {
	m, err := NewIsolateMetric(DefaultMetricConfig(), MetricOptions{})
	if err != nil {
		panic(err)
	}
	return m
}
