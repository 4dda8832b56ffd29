package hdbscan

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxDistances(t *testing.T) {
	ds, err := NewDataset([][]float64{{0, 0}, {3, 4}, {0, 1}, {9, 9}})
	require.NoError(t, err)
	core := []float64{1, 2, 3, 4}
	cm := NewClusterMap([]int{0, 0, 0, 1}, 2)

	dists, err := MinMaxDistances(testContext(t), ds, EuclideanMetric{}, core, cm)
	require.NoError(t, err)
	require.Len(t, dists, 2)

	c0 := dists[0]
	assert.Equal(t, 0, c0.Label)
	assert.Equal(t, 1.0, c0.MinCore)
	assert.Equal(t, 3.0, c0.MaxCore)
	assert.InDelta(t, 1.0, c0.MinIntra, 1e-12)
	assert.InDelta(t, 5.0, c0.MaxIntra, 1e-12)
	assert.InDelta(t, 100.0/3, c0.CoreConfidence, 1e-9)
	assert.InDelta(t, 20.0, c0.IntraConfidence, 1e-9)

	// A singleton has no intra-cluster pair.
	c1 := dists[1]
	assert.Equal(t, 4.0, c1.MinCore)
	assert.Equal(t, 0.0, c1.MinIntra)
	assert.Equal(t, 0.0, c1.MaxIntra)
	assert.Equal(t, 100.0, c1.IntraConfidence)
	assert.Equal(t, 100.0, c1.CoreConfidence)
}

func TestMinMaxDistances_Cancelled(t *testing.T) {
	ds, err := NewDataset([][]float64{{0}, {1}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err = MinMaxDistances(ctx, ds, EuclideanMetric{}, []float64{1, 1}, NewClusterMap([]int{0, 0}, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateStats(t *testing.T) {
	dists := []ClusterDistances{
		{Label: 0, CoreConfidence: 10, IntraConfidence: 50},
		{Label: 1, CoreConfidence: 20, IntraConfidence: 50},
		{Label: 2, CoreConfidence: 60, IntraConfidence: 50},
	}
	s := CalculateStats(dists)

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 30.0, s.CoreDistance.Mean, 1e-9)
	assert.InDelta(t, 700.0, s.CoreDistance.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(700), s.CoreDistance.StdDev, 1e-9)
	assert.Equal(t, 60.0, s.CoreDistance.Max)
	assert.Greater(t, s.CoreDistance.Skewness, 0.0)

	// Constant samples have no spread; undefined moments become 0.
	assert.Equal(t, 50.0, s.IntraDistance.Mean)
	assert.Equal(t, 0.0, s.IntraDistance.Variance)
	assert.Equal(t, 0.0, s.IntraDistance.Skewness)
	assert.Equal(t, 0.0, s.IntraDistance.Kurtosis)

	assert.Equal(t, ClusteringStats{}, CalculateStats(nil))
}

func TestClusteringStats_Validity(t *testing.T) {
	tests := []struct {
		name  string
		stats ClusteringStats
		want  int
	}{
		{"flat", ClusteringStats{}, 0},
		{
			"right skewed heavy tails",
			ClusteringStats{
				CoreDistance:  StatsValues{Skewness: 1, Kurtosis: 2},
				IntraDistance: StatsValues{Skewness: 0.5, Kurtosis: 0.1},
			},
			6,
		},
		{
			"left skewed light tails",
			ClusteringStats{
				CoreDistance:  StatsValues{Skewness: -1, Kurtosis: -1},
				IntraDistance: StatsValues{Skewness: -1, Kurtosis: -1},
			},
			-4,
		},
		{
			"mixed",
			ClusteringStats{
				CoreDistance:  StatsValues{Skewness: 1, Kurtosis: -1},
				IntraDistance: StatsValues{Skewness: -1},
			},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.Validity())
		})
	}
}

func TestSortBySimilarity(t *testing.T) {
	dists := []ClusterDistances{
		{Label: 0, CoreConfidence: 40, IntraConfidence: 90},
		{Label: 1, CoreConfidence: 80, IntraConfidence: 10},
		{Label: 2, CoreConfidence: 40, IntraConfidence: 50},
	}
	assert.Equal(t, []int{1, 0, 2}, SortBySimilarity(dists, CoreDistanceKind))
	assert.Equal(t, []int{0, 2, 1}, SortBySimilarity(dists, IntraDistanceKind))
	assert.Equal(t, 0, dists[0].Label, "input must not be reordered")
}
