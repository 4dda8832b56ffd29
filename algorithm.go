package hdbscan

import "fmt"

// NeighborIndex selects how core distances are computed.
type NeighborIndex string

const (
	// IndexAuto uses the KD-tree for axis-decomposable metrics on data with
	// few dimensions, and the brute-force scan otherwise.
	IndexAuto NeighborIndex = "auto"
	// IndexBrute scans every pair of points.
	IndexBrute NeighborIndex = "brute"
	// IndexKDTree answers k-nearest-neighbor queries from a KD-tree.
	IndexKDTree NeighborIndex = "kdtree"
)

// kdTreeMaxDims is the dimensionality above which IndexAuto stops using the
// KD-tree; bounding boxes prune too little beyond it.
const kdTreeMaxDims = 16

// defaultLeafSize is the KD-tree leaf size.
const defaultLeafSize = 40

// KDTreeValidMetric reports whether the metric supports KD-tree acceleration.
// KD-trees require metrics that decompose along coordinate axes:
// Euclidean, Manhattan, Chebyshev, Minkowski.
func KDTreeValidMetric(m DistanceMetric) bool {
	switch m.(type) {
	case EuclideanMetric, ManhattanMetric, ChebyshevMetric, MinkowskiMetric:
		return true
	default:
		return false
	}
}

// selectIndex resolves IndexAuto into a concrete index for the metric and
// dimensionality, and rejects a forced KD-tree on an unsupported metric.
func selectIndex(cfg *Config, dims int) (NeighborIndex, error) {
	switch cfg.NeighborIndex {
	case IndexAuto, "":
		if KDTreeValidMetric(cfg.Metric) && dims <= kdTreeMaxDims {
			return IndexKDTree, nil
		}
		return IndexBrute, nil
	case IndexBrute:
		return IndexBrute, nil
	case IndexKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return "", validationErrorf("NeighborIndex", "metric %s is not supported by the KD-tree index", metricName(cfg.Metric))
		}
		return IndexKDTree, nil
	default:
		return "", &ValidationError{Field: "NeighborIndex", Reason: fmt.Sprintf("unknown index %q", cfg.NeighborIndex)}
	}
}
