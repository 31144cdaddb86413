package ohclust

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// ComputeSimilarityMatrix scores every pair of elements (including each
// element against itself) with metric and returns the symmetric n×n matrix.
// Pairs the metric cannot score hold Undefined.
func ComputeSimilarityMatrix(elems []Element, metric Metric[Element]) *mat.SymDense {
	n := len(elems)
	if n == 0 {
		return &mat.SymDense{}
	}
	result := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			metric.Apply(elems[i], elems[j])
			result.SetSym(i, j, metric.Result())
		}
	}
	return result
}

// ComputeSimilarityMatrixParallel is ComputeSimilarityMatrix spread across
// numWorkers goroutines. Metrics are not safe for concurrent use, so each
// worker gets its own instance from newMetric. If numWorkers <= 1 it falls
// back to the sequential version.
//
// The result is bitwise identical to ComputeSimilarityMatrix. The context is
// checked between rows.
func ComputeSimilarityMatrixParallel(ctx context.Context, elems []Element, newMetric func() Metric[Element], numWorkers int) (*mat.SymDense, error) {
	n := len(elems)
	if numWorkers <= 1 || n <= 1 {
		return ComputeSimilarityMatrix(elems, newMetric()), nil
	}

	result := mat.NewSymDense(n, nil)

	// Each worker owns a contiguous range of rows and writes only the upper
	// triangle of those rows, so writes never overlap.
	g, ctx := errgroup.WithContext(ctx)
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, n)
		if startRow >= n {
			break
		}

		metric := newMetric()
		g.Go(func() error {
			for i := startRow; i < endRow; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for j := i; j < n; j++ {
					metric.Apply(elems[i], elems[j])
					result.SetSym(i, j, metric.Result())
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
