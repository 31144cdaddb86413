package ohclust

import (
	"errors"
	"slices"
)

// ErrNoClusters is returned when the ontology pass leaves the root without
// clusters: the taxonomy received no usable data at all.
var ErrNoClusters = errors.New("ohclust: no clusters formed at the ontology root")

// OHClusterer is the ontology-guided hierarchical clusterer ("OHClust!").
//
// Input clusters are routed to the leaves of the ontology and clustered
// there at the first (alpha) threshold. Results are merged upward through
// the taxonomy, children before parents, still at alpha. The remaining
// thresholds are then applied in order to the clusters left at the root.
type OHClusterer struct {
	clusterer *Clusterer
	ontology  *Ontology
}

// NewOHClusterer returns an ontology-guided clusterer. A nil ontology makes
// it behave exactly like clusterer.Run.
func NewOHClusterer(clusterer *Clusterer, ontology *Ontology) *OHClusterer {
	return &OHClusterer{clusterer: clusterer, ontology: ontology}
}

func (o *OHClusterer) Name() string { return "OHClust!" }

func (o *OHClusterer) Ontology() *Ontology { return o.ontology }

// Cluster assigns clusters to the ontology and runs the clustering pass.
// Data already held by the ontology from earlier calls is kept; only the
// partitions that received new data are re-clustered. A batch containing an
// unroutable cluster is rejected whole.
func (o *OHClusterer) Cluster(clusters []*Cluster, thresholds []float64) (*Results, error) {
	if len(thresholds) == 0 {
		return nil, ErrNoThresholds
	}
	if o.ontology == nil {
		return o.clusterer.Run(clusters, thresholds)
	}

	if err := o.ontology.AddAll(clusters); err != nil {
		return nil, err
	}

	root := o.ontology.Root()
	alpha := thresholds[0]
	o.clusterTerm(root, alpha)

	if len(root.clusters) == 0 {
		return nil, ErrNoClusters
	}

	work := slices.Clone(root.clusters)
	stages := make([]Stage, 0, len(thresholds))
	stages = append(stages, Stage{Threshold: alpha, Clusters: slices.Clone(work)})

	for _, t := range thresholds[1:] {
		work = o.clusterer.ClusterDataSet(work, t)
		stages = append(stages, Stage{Threshold: t, Clusters: slices.Clone(work)})
	}
	return &Results{stages: stages}, nil
}

// clusterTerm brings t's cached clusters up to date, post-order.
//
// A leaf clusters its raw data. An inner node folds in its children's
// clusters in declaration order. When the node is time-sensitive the working
// set is re-clustered after every child once the first child with new data
// has been folded in; otherwise it is clustered once after all children.
// Terms without new data keep their cached clusters.
func (o *OHClusterer) clusterTerm(t *Term, threshold float64) {
	if !t.dirty {
		return
	}
	defer func() { t.dirty = false }()

	if t.IsLeaf() {
		o.clusterer.logger.Debug("clustering ontology leaf", "term", t.name, "size", len(t.data))
		t.clusters = o.clusterer.ClusterDataSet(t.data, threshold)
		return
	}

	var work []*Cluster
	folded := false
	for _, child := range t.children {
		if child.dirty {
			o.clusterTerm(child, threshold)
			folded = true
		}
		if child.clusters == nil {
			continue
		}

		work = append(work, child.clusters...)
		if folded && t.timeSensitive {
			work = o.clusterer.ClusterDataSet(work, threshold)
		}
	}

	if folded && !t.timeSensitive {
		work = o.clusterer.ClusterDataSet(work, threshold)
	}
	o.clusterer.logger.Debug("clustered ontology term",
		"term", t.name, "time_sensitive", t.timeSensitive, "clusters", len(work))
	t.clusters = work
}
