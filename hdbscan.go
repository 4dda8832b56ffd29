package hdbscan

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxPoints is the point budget applied when Config.MaxPoints is 0.
const DefaultMaxPoints = 100_000

// Config controls HDBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinPoints is the neighbor rank used for core distances: a point's core
	// distance is the distance to its MinPoints-th nearest other point.
	// Higher values smooth the density estimate and label more points as noise.
	// Must be in [1, N-1] for a dataset of N points. Default: 5.
	MinPoints int

	// MinClusterSize is the smallest group of points considered a cluster.
	// 0 means max(MinPoints, 2). Must be 0 or >= 2.
	MinClusterSize int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric, CosineMetric, PearsonMetric. Use DistanceFunc to wrap a
	// custom function. Default: EuclideanMetric.
	Metric DistanceMetric

	// ClusterSelectionMethod chooses how flat clusters are extracted from the
	// condensed tree. "eom" (Excess of Mass) maximizes cluster stability.
	// "leaf" selects the leaves, producing many small homogeneous clusters.
	// Default: "eom".
	ClusterSelectionMethod string

	// Alpha scales pairwise distances before computing mutual reachability.
	// Must be > 0. Default: 1.0.
	Alpha float64

	// AllowSingleCluster lets selection pick the root, returning all
	// non-noise points in one cluster. Default: false.
	AllowSingleCluster bool

	// ClusterSelectionEpsilon sets a distance threshold below which clusters
	// are not split further. 0 disables it. Must be >= 0.
	ClusterSelectionEpsilon float64

	// ClusterSelectionPersistence removes leaf clusters whose persistence
	// (birth lambda minus parent birth lambda) is below this threshold.
	// 0 disables it. Must be >= 0.
	ClusterSelectionPersistence float64

	// MaxClusterSize forces subclusters to be selected over a parent cluster
	// when the parent exceeds this size. 0 means unlimited.
	MaxClusterSize int

	// ComputeOutlierScores enables GLOSH outlier scores. Default: true.
	ComputeOutlierScores bool

	// ComputeProbabilities enables membership probabilities. Default: true.
	ComputeProbabilities bool

	// Constraints are optional must-link / cannot-link pairs. Clusterings that
	// satisfy more of them win over more stable ones during EOM selection.
	Constraints []Constraint

	// NeighborIndex selects the core distance strategy: IndexBrute scans all
	// pairs, IndexKDTree queries a KD-tree, IndexAuto picks the KD-tree for
	// axis-decomposable metrics on low-dimensional data. Both give identical
	// core distances. Default: IndexAuto.
	NeighborIndex NeighborIndex

	// Workers controls the number of goroutines used for core distances.
	// 0 means runtime.NumCPU().
	Workers int

	// MaxPoints is the largest dataset accepted; the algorithm is O(N²).
	// 0 means DefaultMaxPoints, a negative value disables the check.
	MaxPoints int

	// MaxDuration bounds a single run. 0 means unlimited.
	MaxDuration time.Duration
}

// Result contains the output of HDBSCAN clustering.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed, contiguous) or Noise.
	Labels []int

	// NumClusters is the number of distinct non-noise labels.
	NumClusters int

	// Probabilities indicates how strongly each point belongs to its assigned
	// cluster, in [0, 1]. Noise points have probability 0. Nil unless
	// Config.ComputeProbabilities is set.
	Probabilities []float64

	// OutlierScores is the GLOSH score for each point, in [0, 1]. Values near
	// 0 indicate inliers. Nil unless Config.ComputeOutlierScores is set.
	OutlierScores []float64

	// Stabilities maps cluster labels to their stability values.
	Stabilities map[int]float64

	// CoreDistances holds each point's core distance.
	CoreDistances []float64

	// CondensedTree is the condensed cluster hierarchy.
	CondensedTree *CondensedTree

	// SingleLinkageTree is the full single-linkage dendrogram in scipy format:
	// each row is [left, right, distance, size]. Internal node IDs start at n.
	SingleLinkageTree [][4]float64

	// Degenerate is set when the input had fewer than two distinct points and
	// every point was placed in one cluster.
	Degenerate *DegenerateInputError
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinPoints:              5,
		Metric:                 EuclideanMetric{},
		ClusterSelectionMethod: SelectionEOM,
		NeighborIndex:          IndexAuto,
		Alpha:                  1.0,
		ComputeOutlierScores:   true,
		ComputeProbabilities:   true,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// *ValidationError if not. Bounds that depend on the dataset are checked at
// run time.
func validateConfig(cfg *Config) error {
	if cfg.MinPoints < 1 {
		return validationErrorf("MinPoints", "must be >= 1, got %d", cfg.MinPoints)
	}
	if cfg.MinClusterSize != 0 && cfg.MinClusterSize < 2 {
		return validationErrorf("MinClusterSize", "must be 0 or >= 2, got %d", cfg.MinClusterSize)
	}
	if m, ok := cfg.Metric.(MinkowskiMetric); ok && !(m.P >= 1) {
		return validationErrorf("Metric", "minkowski p must be >= 1, got %v", m.P)
	}
	if cfg.Alpha <= 0 || math.IsNaN(cfg.Alpha) {
		return validationErrorf("Alpha", "must be > 0, got %f", cfg.Alpha)
	}
	if cfg.ClusterSelectionMethod != SelectionEOM && cfg.ClusterSelectionMethod != SelectionLeaf {
		return validationErrorf("ClusterSelectionMethod", "must be %q or %q, got %q",
			SelectionEOM, SelectionLeaf, cfg.ClusterSelectionMethod)
	}
	if cfg.ClusterSelectionEpsilon < 0 {
		return validationErrorf("ClusterSelectionEpsilon", "must be >= 0, got %f", cfg.ClusterSelectionEpsilon)
	}
	if cfg.ClusterSelectionPersistence < 0 {
		return validationErrorf("ClusterSelectionPersistence", "must be >= 0, got %f", cfg.ClusterSelectionPersistence)
	}
	switch cfg.NeighborIndex {
	case IndexAuto, IndexBrute, IndexKDTree:
	default:
		return validationErrorf("NeighborIndex", "must be %q, %q or %q, got %q",
			IndexAuto, IndexBrute, IndexKDTree, cfg.NeighborIndex)
	}
	if cfg.MaxClusterSize < 0 {
		return validationErrorf("MaxClusterSize", "must be >= 0, got %d", cfg.MaxClusterSize)
	}
	if cfg.MaxDuration < 0 {
		return validationErrorf("MaxDuration", "must be >= 0, got %s", cfg.MaxDuration)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.ClusterSelectionMethod == "" {
		cfg.ClusterSelectionMethod = SelectionEOM
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 1.0
	}
	if cfg.NeighborIndex == "" {
		cfg.NeighborIndex = IndexAuto
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.MaxPoints == 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
}

// minClusterSize resolves the effective minimum cluster size.
func (cfg *Config) minClusterSize() int {
	if cfg.MinClusterSize > 0 {
		return cfg.MinClusterSize
	}
	return max(cfg.MinPoints, 2)
}

// Cluster performs HDBSCAN clustering on the given data.
// Each element is a point; all points must have the same dimensionality.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	return ClusterContext(context.Background(), data, cfg)
}

// ClusterContext is Cluster with cancellation. A cancelled run returns
// ctx.Err() and no result.
func ClusterContext(ctx context.Context, data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	ds, err := NewDataset(data)
	if err != nil {
		return nil, err
	}
	return runPipeline(ctx, ds, cfg, slog.Default())
}

// ClusterPrecomputed performs HDBSCAN on a precomputed distance matrix.
// distMatrix is a flat []float64 of length n*n in row-major order, where
// distMatrix[i*n+j] is the distance between points i and j. The matrix must
// be symmetric with a zero diagonal. The Config.Metric field is ignored since
// distances are already computed.
func ClusterPrecomputed(distMatrix []float64, n int, cfg Config) (*Result, error) {
	return ClusterPrecomputedContext(context.Background(), distMatrix, n, cfg)
}

// ClusterPrecomputedContext is ClusterPrecomputed with cancellation and the
// MaxDuration budget.
func ClusterPrecomputedContext(ctx context.Context, distMatrix []float64, n int, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	allZero, err := validateDistanceMatrix(distMatrix, n)
	if err != nil {
		return nil, err
	}
	if err := checkRunBounds(n, &cfg); err != nil {
		return nil, err
	}
	logger := slog.Default()
	if allZero {
		return degenerateResult(n, cfg, logger), nil
	}

	if cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxDuration)
		defer cancel()
	}

	core := ComputeCoreDistances(distMatrix, n, cfg.MinPoints)
	g := &precomputedReachability{dist: distMatrix, core: core, n: n, alpha: cfg.Alpha}
	edges, err := PrimMST(ctx, g)
	if err != nil {
		return nil, budgetError(errors.Wrap(err, "hdbscan: minimum spanning tree"), cfg)
	}
	return clusterFromMST(edges, core, n, cfg, logger)
}

// validateDistanceMatrix checks that distMatrix is an n*n symmetric matrix of
// non-negative distances with a zero diagonal, and reports whether every
// entry is zero.
func validateDistanceMatrix(distMatrix []float64, n int) (allZero bool, err error) {
	if n <= 0 {
		return false, &ValidationError{Field: "distMatrix", Reason: "dataset is empty"}
	}
	if len(distMatrix) != n*n {
		return false, validationErrorf("distMatrix", "length %d does not match n*n = %d (n=%d)", len(distMatrix), n*n, n)
	}
	allZero = true
	for i := 0; i < n; i++ {
		if d := distMatrix[i*n+i]; d != 0 {
			return false, validationErrorf("distMatrix", "diagonal entry (%d, %d) must be 0, got %v", i, i, d)
		}
		for j := i + 1; j < n; j++ {
			d := distMatrix[i*n+j]
			if math.IsNaN(d) || d < 0 {
				return false, validationErrorf("distMatrix", "entry (%d, %d) must be a non-negative number, got %v", i, j, d)
			}
			if distMatrix[j*n+i] != d {
				return false, validationErrorf("distMatrix", "not symmetric at (%d, %d): %v != %v", i, j, d, distMatrix[j*n+i])
			}
			if d != 0 {
				allZero = false
			}
		}
	}
	return allZero, nil
}

// checkRunBounds validates the parts of cfg that depend on the dataset size.
func checkRunBounds(n int, cfg *Config) error {
	if cfg.MaxPoints > 0 && n > cfg.MaxPoints {
		return &ResourceExhaustedError{
			Resource: "points",
			Limit:    fmt.Sprint(cfg.MaxPoints),
			Actual:   fmt.Sprint(n),
		}
	}
	if err := validateMinPoints(cfg.MinPoints, n); err != nil {
		return err
	}
	return validateConstraints(cfg.Constraints, n)
}

// coreDistances dispatches to the brute-force or KD-tree implementation.
func coreDistances(ctx context.Context, ds *Dataset, cfg *Config) ([]float64, error) {
	index, err := selectIndex(cfg, ds.Dims())
	if err != nil {
		return nil, err
	}
	if index == IndexKDTree {
		return CoreDistancesKDTree(ctx, ds, cfg.Metric, cfg.MinPoints, cfg.Workers, defaultLeafSize)
	}
	return CoreDistances(ctx, ds, cfg.Metric, cfg.MinPoints, cfg.Workers)
}

// runPipeline runs core distances through labelling on a validated dataset.
func runPipeline(ctx context.Context, ds *Dataset, cfg Config, logger *slog.Logger) (*Result, error) {
	n := ds.Len()
	if err := checkRunBounds(n, &cfg); err != nil {
		return nil, err
	}
	if ds.allIdentical() {
		return degenerateResult(n, cfg, logger), nil
	}

	if cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MaxDuration)
		defer cancel()
	}

	core, err := coreDistances(ctx, ds, &cfg)
	if err != nil {
		if IsValidation(err) {
			return nil, err
		}
		return nil, budgetError(errors.Wrap(err, "hdbscan: core distances"), cfg)
	}

	g := NewMutualReachability(ds, core, cfg.Metric, cfg.Alpha)
	edges, err := PrimMST(ctx, g)
	if err != nil {
		return nil, budgetError(errors.Wrap(err, "hdbscan: minimum spanning tree"), cfg)
	}

	return clusterFromMST(edges, core, n, cfg, logger)
}

// budgetError turns a deadline overrun caused by MaxDuration into a
// *ResourceExhaustedError.
func budgetError(err error, cfg Config) error {
	if cfg.MaxDuration > 0 && errors.Is(err, context.DeadlineExceeded) {
		return &ResourceExhaustedError{
			Resource: "time",
			Limit:    cfg.MaxDuration.String(),
			Actual:   "deadline exceeded",
		}
	}
	return err
}

// clusterFromMST runs the pipeline from MST edges onward
// (dendrogram → condensed tree → selection → labels → scores).
func clusterFromMST(edges []Edge, core []float64, n int, cfg Config, logger *slog.Logger) (*Result, error) {
	if hasInfiniteEdge(edges) {
		logger.Warn("hdbscan: MST contains edge(s) with +Inf weight (disconnected components)")
	}

	dendrogram, err := BuildDendrogram(edges, n)
	if err != nil {
		return nil, errors.Wrap(err, "hdbscan: single-linkage tree")
	}

	tree := CondenseTree(dendrogram, cfg.minClusterSize())
	if cfg.ClusterSelectionPersistence > 0 {
		tree = SimplifyHierarchy(tree, cfg.ClusterSelectionPersistence)
	}
	if ComputeStability(tree) {
		logger.Warn("hdbscan: infinite cluster stability; duplicate points may make selection unreliable",
			"min_points", cfg.MinPoints, "min_cluster_size", cfg.minClusterSize())
	}

	var selected []bool
	switch cfg.ClusterSelectionMethod {
	case SelectionLeaf:
		selected = SelectClustersLeaf(tree)
	default:
		satisfied := constraintsSatisfied(tree, cfg.Constraints)
		selected = SelectClustersEOM(tree, cfg.AllowSingleCluster, cfg.MaxClusterSize, satisfied)
	}
	if cfg.ClusterSelectionEpsilon > 0 {
		selected = EpsilonSearch(tree, selected, cfg.ClusterSelectionEpsilon, cfg.AllowSingleCluster)
	}

	labels, clusterNodes := AssignLabels(tree, selected)

	stabilities := make(map[int]float64, len(clusterNodes))
	for label, id := range clusterNodes {
		stabilities[label] = tree.Nodes[id].Stability
	}

	result := &Result{
		Labels:            labels,
		NumClusters:       len(clusterNodes),
		Stabilities:       stabilities,
		CoreDistances:     core,
		CondensedTree:     tree,
		SingleLinkageTree: dendrogram.Linkage(),
	}
	if cfg.ComputeProbabilities {
		result.Probabilities = MembershipProbabilities(tree, labels, clusterNodes)
	}
	if cfg.ComputeOutlierScores {
		result.OutlierScores = OutlierScores(tree)
	}
	return result, nil
}

// degenerateResult places every point in cluster 0. It is used when the input
// has fewer than two distinct points, so no split can exist.
func degenerateResult(n int, cfg Config, logger *slog.Logger) *Result {
	degenerate := &DegenerateInputError{
		Points:         n,
		DistinctPoints: 1,
		Reason:         "all points are identical; assigning every point to a single cluster",
	}
	logger.Warn(degenerate.Error())

	result := &Result{
		Labels:      make([]int, n),
		NumClusters: 1,
		Stabilities: map[int]float64{0: math.Inf(1)},
		Degenerate:  degenerate,
	}
	if cfg.ComputeProbabilities {
		result.Probabilities = make([]float64, n)
		for i := range result.Probabilities {
			result.Probabilities[i] = 1
		}
	}
	if cfg.ComputeOutlierScores {
		result.OutlierScores = make([]float64, n)
	}
	return result
}
