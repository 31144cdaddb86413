// Package ohclust implements agglomerative hierarchical clustering of
// bacterial isolates by pyroprint similarity, with an ontology-guided
// variant ("OHClust!") that uses a taxonomy to partition the data before
// clustering.
//
// Similarity is computed by composable metrics: a Pearson correlation over
// the peak heights of two pyroprints is averaged over all pyroprint pairs of
// an ITS region, over the regions two isolates share, and finally over all
// isolate pairs of two clusters (average linkage).
//
// Basic usage:
//
//	cfg := ohclust.DefaultConfig()
//	cfg.Thresholds = []float64{0.995, 0.99, 0.97}
//	result, err := ohclust.Run(ctx, isolates, nil, cfg)
//	// result.At(0.99) is the partition at threshold 0.99
//
// With a taxonomy, isolates are routed to leaf partitions by their labels
// and clustered there at the first (alpha) threshold. Results are merged up
// the tree, and the remaining thresholds refine the root result:
//
//	onto, err := ohclust.NewOntology(ohclust.TermSpec{
//		Name: "root",
//		Partitions: []ohclust.TermSpec{
//			{Name: "Cow"},
//			{Name: "Human", TimeSensitive: true, Partitions: ...},
//		},
//	})
//	result, err := ohclust.Run(ctx, isolates, onto, cfg)
//
// # Lower-level API
//
// [Clusterer] runs the merge loop over arbitrary [Cluster] values with any
// Metric[*Cluster], and [OHClusterer] adds the ontology pass on top of it.
// Metrics are stateful and not safe for concurrent use; give each goroutine
// its own instances.
package ohclust
