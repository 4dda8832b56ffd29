package hdbscan

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachRowBlock splits rows [0, n) into contiguous blocks and runs fn on
// each block in its own goroutine, at most numWorkers at a time. Blocks never
// overlap, so fn may write to per-row output without synchronization. The
// first error (or ctx cancellation) stops the remaining blocks.
func forEachRowBlock(ctx context.Context, n, numWorkers int, fn func(ctx context.Context, start, end int) error) error {
	if numWorkers <= 1 || n <= 1 {
		return fn(ctx, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)

	rowsPerWorker := (n + numWorkers - 1) / numWorkers
	for start := 0; start < n; start += rowsPerWorker {
		start := start
		end := min(start+rowsPerWorker, n)
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}

	return g.Wait()
}

// ComputePairwiseDistancesParallel computes the full n×n distance matrix using
// multiple goroutines. The result is bitwise identical to
// ComputePairwiseDistances.
func ComputePairwiseDistancesParallel(ctx context.Context, data []float64, n, dims int, metric DistanceMetric, numWorkers int) ([]float64, error) {
	if numWorkers <= 1 || n <= 1 {
		return ComputePairwiseDistances(data, n, dims, metric), nil
	}

	result := make([]float64, n*n)

	// Each worker fills complete rows, so no cell is written twice.
	err := forEachRowBlock(ctx, n, numWorkers, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				// Always evaluate with the lower index first so both
				// halves of the matrix see the same floating-point result.
				a, b := min(i, j), max(i, j)
				result[i*n+j] = metric.Distance(data[a*dims:(a+1)*dims], data[b*dims:(b+1)*dims])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PairwiseDistances computes the full n×n distance matrix of ds with
// numWorkers goroutines (0 means runtime.NumCPU()). The result is a valid
// input for ClusterPrecomputed.
func PairwiseDistances(ctx context.Context, ds *Dataset, metric DistanceMetric, numWorkers int) ([]float64, error) {
	if metric == nil {
		metric = EuclideanMetric{}
	}
	if numWorkers == 0 {
		numWorkers = runtime.NumCPU()
	}
	return ComputePairwiseDistancesParallel(ctx, ds.flat(), ds.Len(), ds.Dims(), metric, numWorkers)
}
