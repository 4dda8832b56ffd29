package hdbscan

import (
	"context"
	"sort"
)

// validateMinPoints checks 1 <= minPoints <= n-1.
func validateMinPoints(minPoints, n int) error {
	if minPoints < 1 || minPoints > n-1 {
		return validationErrorf("minPoints", "must be in [1, %d] for %d points, got %d", n-1, n, minPoints)
	}
	return nil
}

// CoreDistances computes, for every point of ds, the distance to its
// minPoints-th nearest other point. The point itself is never counted as its
// own neighbor, so minPoints = 1 yields the nearest-neighbor distance.
// Duplicate points are valid and contribute zero distances.
//
// Rows are sharded across numWorkers goroutines; each worker keeps one O(n)
// scratch buffer, so no distance matrix is materialized.
func CoreDistances(ctx context.Context, ds *Dataset, metric DistanceMetric, minPoints, numWorkers int) ([]float64, error) {
	n := ds.Len()
	if err := validateMinPoints(minPoints, n); err != nil {
		return nil, err
	}

	core := make([]float64, n)
	err := forEachRowBlock(ctx, n, numWorkers, func(ctx context.Context, start, end int) error {
		neighbors := make([]float64, n-1)
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := ds.Row(i)
			k := 0
			for j := 0; j < n; j++ {
				if j != i {
					neighbors[k] = metric.Distance(a, ds.Row(j))
					k++
				}
			}
			sort.Float64s(neighbors)
			core[i] = neighbors[minPoints-1]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return core, nil
}

// ComputeCoreDistances computes core distances from a precomputed distance
// matrix. distMatrix is flat n*n row-major. minPoints is clamped to [0, n-1];
// zero yields all-zero core distances.
func ComputeCoreDistances(distMatrix []float64, n, minPoints int) []float64 {
	minPoints = min(minPoints, n-1)
	minPoints = max(minPoints, 0)

	core := make([]float64, n)
	if minPoints == 0 {
		return core
	}

	neighbors := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		neighbors = neighbors[:0]
		for j := 0; j < n; j++ {
			if j != i {
				neighbors = append(neighbors, distMatrix[i*n+j])
			}
		}
		sort.Float64s(neighbors)
		core[i] = neighbors[minPoints-1]
	}

	return core
}
