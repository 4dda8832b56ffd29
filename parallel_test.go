package hdbscan

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func pairwiseParallel(t *testing.T, data []float64, n, dims int, metric DistanceMetric, workers int) []float64 {
	t.Helper()
	out, err := ComputePairwiseDistancesParallel(context.Background(), data, n, dims, metric, workers)
	if err != nil {
		t.Fatalf("workers=%d: %v", workers, err)
	}
	return out
}

func TestComputePairwiseDistancesParallel_BitwiseIdentical(t *testing.T) {
	// 20 points to exercise multiple workers with real load.
	n, dims := 20, 3
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = math.Sin(float64(i) * 0.7)
	}

	for _, metric := range []DistanceMetric{EuclideanMetric{}, ManhattanMetric{}, CosineMetric{}} {
		sequential := ComputePairwiseDistances(data, n, dims, metric)
		for _, workers := range []int{1, 2, 4, 7, 50} {
			parallel := pairwiseParallel(t, data, n, dims, metric, workers)
			if len(parallel) != len(sequential) {
				t.Fatalf("workers=%d: length mismatch %d != %d", workers, len(parallel), len(sequential))
			}
			for i := range sequential {
				if parallel[i] != sequential[i] {
					t.Errorf("%s workers=%d: result[%d] = %v, expected %v (bitwise)",
						metricName(metric), workers, i, parallel[i], sequential[i])
				}
			}
		}
	}
}

func TestComputePairwiseDistancesParallel_SmallInputs(t *testing.T) {
	if got := pairwiseParallel(t, []float64{1, 2}, 1, 2, EuclideanMetric{}, 4); len(got) != 1 || got[0] != 0 {
		t.Errorf("single point: got %v, want [0]", got)
	}

	got := pairwiseParallel(t, []float64{0, 0, 3, 4}, 2, 2, EuclideanMetric{}, 2)
	if !almostEqual(got[1], 5, floatTol) || !almostEqual(got[2], 5, floatTol) {
		t.Errorf("two points: got %v, want off-diagonal 5", got)
	}
}

func TestComputePairwiseDistancesParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := []float64{0, 1, 2, 3, 4, 5}
	_, err := ComputePairwiseDistancesParallel(ctx, data, 6, 1, EuclideanMetric{}, 3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestForEachRowBlock_CoversEveryRowOnce(t *testing.T) {
	for _, tc := range []struct{ n, workers int }{{1, 4}, {10, 1}, {10, 3}, {10, 10}, {17, 4}} {
		var hits [32]int32
		err := forEachRowBlock(context.Background(), tc.n, tc.workers, func(_ context.Context, start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < tc.n; i++ {
			if hits[i] != 1 {
				t.Errorf("n=%d workers=%d: row %d visited %d times", tc.n, tc.workers, i, hits[i])
			}
		}
	}
}

func TestForEachRowBlock_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := forEachRowBlock(context.Background(), 8, 4, func(_ context.Context, start, _ int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestPairwiseDistances(t *testing.T) {
	ds, err := NewDataset(twoBlobsAndOutlier())
	if err != nil {
		t.Fatal(err)
	}
	want := ComputePairwiseDistances(ds.flat(), ds.Len(), ds.Dims(), ManhattanMetric{})

	got, err := PairwiseDistances(context.Background(), ds, ManhattanMetric{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// The matrix is accepted by the precomputed entry point.
	res, err := ClusterPrecomputed(got, ds.Len(), configWithMinPoints(3))
	if err != nil {
		t.Fatalf("ClusterPrecomputed: %v", err)
	}
	if res.NumClusters != 2 {
		t.Errorf("NumClusters = %d, want 2", res.NumClusters)
	}
}
