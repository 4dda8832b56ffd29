package hdbscan

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DistanceKind selects which per-cluster distances a comparison uses.
type DistanceKind int

const (
	CoreDistanceKind DistanceKind = iota
	IntraDistanceKind
)

// ClusterDistances holds the extreme core and intra-cluster distances of one
// cluster. Confidences are min/max*100; a cluster with a zero maximum has
// confidence 100.
type ClusterDistances struct {
	Label           int     `json:"label" yaml:"label"`
	MinCore         float64 `json:"min_core" yaml:"min_core"`
	MaxCore         float64 `json:"max_core" yaml:"max_core"`
	MinIntra        float64 `json:"min_intra" yaml:"min_intra"`
	MaxIntra        float64 `json:"max_intra" yaml:"max_intra"`
	CoreConfidence  float64 `json:"core_confidence" yaml:"core_confidence"`
	IntraConfidence float64 `json:"intra_confidence" yaml:"intra_confidence"`
}

// StatsValues summarizes a sample of confidences.
type StatsValues struct {
	Mean     float64 `json:"mean" yaml:"mean"`
	StdDev   float64 `json:"std_dev" yaml:"std_dev"`
	Variance float64 `json:"variance" yaml:"variance"`
	Max      float64 `json:"max" yaml:"max"`
	Kurtosis float64 `json:"kurtosis" yaml:"kurtosis"`
	Skewness float64 `json:"skewness" yaml:"skewness"`
}

// ClusteringStats describes the spread of core and intra-cluster distance
// confidences over all clusters.
type ClusteringStats struct {
	Count         int         `json:"count" yaml:"count"`
	CoreDistance  StatsValues `json:"core_distance" yaml:"core_distance"`
	IntraDistance StatsValues `json:"intra_distance" yaml:"intra_distance"`
}

// MinMaxDistances computes the per-cluster distance extremes. core holds the
// core distance of every point. Intra distances are all pairwise distances
// between members, so a cluster of m points costs O(m²) metric calls.
func MinMaxDistances(ctx context.Context, ds *Dataset, metric DistanceMetric, core []float64, cm *ClusterMap) ([]ClusterDistances, error) {
	out := make([]ClusterDistances, 0, cm.Len())
	for label, members := range cm.Clusters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cd := ClusterDistances{
			Label:    label,
			MinCore:  math.Inf(1),
			MinIntra: math.Inf(1),
		}
		for i, p := range members {
			cd.MinCore = math.Min(cd.MinCore, core[p])
			cd.MaxCore = math.Max(cd.MaxCore, core[p])
			for _, q := range members[i+1:] {
				d := metric.Distance(ds.Row(p), ds.Row(q))
				cd.MinIntra = math.Min(cd.MinIntra, d)
				cd.MaxIntra = math.Max(cd.MaxIntra, d)
			}
		}
		if math.IsInf(cd.MinCore, 1) {
			cd.MinCore = 0
		}
		if math.IsInf(cd.MinIntra, 1) {
			cd.MinIntra = 0
		}
		cd.CoreConfidence = confidence(cd.MinCore, cd.MaxCore)
		cd.IntraConfidence = confidence(cd.MinIntra, cd.MaxIntra)
		out = append(out, cd)
	}
	return out, nil
}

func confidence(lo, hi float64) float64 {
	if hi == 0 {
		return 100
	}
	return lo / hi * 100
}

// CalculateStats summarizes the confidences of every cluster.
func CalculateStats(dists []ClusterDistances) ClusteringStats {
	core := make([]float64, len(dists))
	intra := make([]float64, len(dists))
	for i, d := range dists {
		core[i] = d.CoreConfidence
		intra[i] = d.IntraConfidence
	}
	return ClusteringStats{
		Count:         len(dists),
		CoreDistance:  summarize(core),
		IntraDistance: summarize(intra),
	}
}

func summarize(x []float64) StatsValues {
	if len(x) == 0 {
		return StatsValues{}
	}
	mean, variance := stat.MeanVariance(x, nil)
	return StatsValues{
		Mean:     finiteOrZero(mean),
		StdDev:   finiteOrZero(math.Sqrt(variance)),
		Variance: finiteOrZero(variance),
		Max:      floats.Max(x),
		Kurtosis: finiteOrZero(stat.ExKurtosis(x, nil)),
		Skewness: finiteOrZero(stat.Skew(x, nil)),
	}
}

// Validity scores a clustering from the shape of its confidence
// distributions. Right-skewed, heavy-tailed confidences mean most clusters are
// tight with a few loose ones; higher is better.
func (s ClusteringStats) Validity() int {
	score := 0
	score += signScore(s.IntraDistance.Skewness, 2, -1)
	score += signScore(s.IntraDistance.Kurtosis, 1, -1)
	score += signScore(s.CoreDistance.Skewness, 2, -1)
	score += signScore(s.CoreDistance.Kurtosis, 1, -1)
	return score
}

func signScore(v float64, positive, negative int) int {
	switch {
	case v > 0:
		return positive
	case v < 0:
		return negative
	default:
		return 0
	}
}

// SortBySimilarity returns cluster labels ordered from most to least
// homogeneous by the chosen confidence. Ties keep ascending label order.
func SortBySimilarity(dists []ClusterDistances, kind DistanceKind) []int {
	sorted := append([]ClusterDistances(nil), dists...)
	key := func(d ClusterDistances) float64 {
		if kind == IntraDistanceKind {
			return d.IntraConfidence
		}
		return d.CoreConfidence
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		ka, kb := key(sorted[a]), key(sorted[b])
		if ka != kb {
			return ka > kb
		}
		return sorted[a].Label < sorted[b].Label
	})
	labels := make([]int, len(sorted))
	for i, d := range sorted {
		labels[i] = d.Label
	}
	return labels
}
