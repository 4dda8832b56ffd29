package hdbscan

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DistanceMetric measures the dissimilarity of two points of equal length.
// Implementations must be symmetric and non-negative.
type DistanceMetric interface {
	Distance(a, b []float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// ChebyshevMetric computes the Chebyshev (L-infinity, supremum) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

// CosineMetric computes the cosine distance: 1 - cosine_similarity, clamped
// at zero. Two zero vectors are at distance 0; a zero vector is at distance 1
// from any other vector.
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	switch {
	case normA == 0 && normB == 0:
		return 0
	case normA == 0 || normB == 0:
		return 1
	}
	return max(0, 1-floats.Dot(a, b)/(normA*normB))
}

// PearsonMetric computes 1 - Pearson correlation, in [0, 2]. When either point
// is constant the correlation is undefined; identical points are then at
// distance 0 and all others at distance 1.
type PearsonMetric struct{}

func (PearsonMetric) Distance(a, b []float64) float64 {
	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		if floats.Equal(a, b) {
			return 0
		}
		return 1
	}
	return max(0, 1-r)
}

// MetricByName resolves a metric selector: "euclidean", "manhattan",
// "chebyshev" (alias "supremum"), "cosine", "pearson" or "minkowski:<p>".
func MetricByName(name string) (DistanceMetric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "euclidean":
		return EuclideanMetric{}, nil
	case "manhattan":
		return ManhattanMetric{}, nil
	case "chebyshev", "supremum":
		return ChebyshevMetric{}, nil
	case "cosine":
		return CosineMetric{}, nil
	case "pearson":
		return PearsonMetric{}, nil
	}
	if p, ok := strings.CutPrefix(name, "minkowski:"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 1 {
			return nil, validationErrorf("metric", "minkowski p must be a number >= 1, got %q", p)
		}
		return MinkowskiMetric{P: v}, nil
	}
	return nil, validationErrorf("metric", "unknown metric %q", name)
}

// metricName returns a short name for logging.
func metricName(m DistanceMetric) string {
	switch v := m.(type) {
	case EuclideanMetric:
		return "euclidean"
	case ManhattanMetric:
		return "manhattan"
	case ChebyshevMetric:
		return "chebyshev"
	case CosineMetric:
		return "cosine"
	case PearsonMetric:
		return "pearson"
	case MinkowskiMetric:
		return fmt.Sprintf("minkowski:%g", v.P)
	default:
		return fmt.Sprintf("%T", m)
	}
}

// ComputePairwiseDistances computes the full n*n distance matrix.
// data is flat row-major with n rows and dims columns.
// Returns flat []float64 of length n*n.
func ComputePairwiseDistances(data []float64, n, dims int, metric DistanceMetric) []float64 {
	result := make([]float64, n*n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := metric.Distance(data[i*dims:(i+1)*dims], data[j*dims:(j+1)*dims])
			result[i*n+j] = d
			result[j*n+i] = d
		}
	}

	return result
}
