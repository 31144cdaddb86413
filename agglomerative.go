package ohclust

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrNoThresholds is returned when a run is requested with an empty threshold list.
var ErrNoThresholds = errors.New("ohclust: at least one threshold is required")

// Clusterer is a bottom-up agglomerative clusterer. Each step scores every
// unordered pair of current clusters with the cluster metric and merges the
// closest pair, until no pair passes the threshold or fewer than two
// clusters remain.
//
// A Clusterer holds a stateful metric and a merge counter, so it is not safe
// for concurrent use. Use one instance per run.
type Clusterer struct {
	metric   Metric[*Cluster]
	polarity Polarity
	logger   *slog.Logger

	merged int
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithPolarity sets how scores are read. Default: Similarity.
func WithPolarity(p Polarity) Option {
	return func(c *Clusterer) { c.polarity = p }
}

// WithLogger sets the logger used for merge tracing. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *Clusterer) { c.logger = l }
}

// NewClusterer returns a clusterer scoring cluster pairs with metric.
func NewClusterer(metric Metric[*Cluster], opts ...Option) *Clusterer {
	c := &Clusterer{metric: metric, polarity: Similarity}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = orDiscard(c.logger)
	return c
}

func (c *Clusterer) Name() string { return "Agglomerative" }

func (c *Clusterer) Polarity() Polarity { return c.polarity }

type clusterPair struct{ a, b *Cluster }

// ClusterDataSet runs the merge loop over clusters at one threshold and
// returns the surviving clusters. The input slice is not modified.
//
// Pairs are visited in (i, j), i < j order over the current list and the
// first pair with the best score wins ties, so the outcome is deterministic
// for a fixed input order. Pairs scoring Undefined are never merged. The
// merged cluster takes the slot of the left member of the pair.
func (c *Clusterer) ClusterDataSet(clusters []*Cluster, threshold float64) []*Cluster {
	work := slices.Clone(clusters)
	scores := make(map[clusterPair]float64)

	for len(work) > 1 {
		bestI, bestJ := -1, -1
		best := Undefined

		for i := 0; i < len(work); i++ {
			for j := i + 1; j < len(work); j++ {
				s := c.score(scores, work[i], work[j])
				if c.polarity.Better(s, best) {
					bestI, bestJ, best = i, j, s
				}
			}
		}

		if bestI < 0 || !c.polarity.Passes(best, threshold) {
			break
		}

		c.merged++
		m := merge(fmt.Sprintf("cluster-%d", c.merged), work[bestI], work[bestJ], best)
		c.logger.Debug("merged clusters",
			"left", work[bestI].Name(), "right", work[bestJ].Name(),
			"into", m.Name(), "score", best, "threshold", threshold)

		work[bestI] = m
		work = slices.Delete(work, bestJ, bestJ+1)
	}

	return work
}

// score memoises pair scores for the duration of one ClusterDataSet call.
// The relative order of surviving clusters never changes, so each pair is
// always scored in the same orientation.
func (c *Clusterer) score(cache map[clusterPair]float64, a, b *Cluster) float64 {
	key := clusterPair{a, b}
	if s, ok := cache[key]; ok {
		return s
	}
	c.metric.Apply(a, b)
	s := c.metric.Result()
	cache[key] = s
	return s
}

// Run drives the merge loop through thresholds in the given order. Each
// threshold continues from the clusters left by the previous one and its
// result is recorded as a separate stage.
func (c *Clusterer) Run(clusters []*Cluster, thresholds []float64) (*Results, error) {
	if len(thresholds) == 0 {
		return nil, ErrNoThresholds
	}

	stages := make([]Stage, 0, len(thresholds))
	work := clusters
	for _, t := range thresholds {
		work = c.ClusterDataSet(work, t)
		stages = append(stages, Stage{Threshold: t, Clusters: slices.Clone(work)})
	}
	return &Results{stages: stages}, nil
}
