// Package hdbscan implements Hierarchical Density-Based Spatial Clustering
// of Applications with Noise (HDBSCAN).
//
// HDBSCAN builds a minimum spanning tree over mutual reachability distances,
// turns it into a cluster hierarchy and extracts the flat clustering whose
// clusters are most stable across density levels. It finds clusters of
// varying densities and labels points outside every cluster as noise.
//
// Basic usage:
//
//	cfg := hdbscan.DefaultConfig()
//	cfg.MinPoints = 10
//	result, err := hdbscan.Cluster(data, cfg)
//	// result.Labels[i] is the cluster ID for point i (hdbscan.Noise = -1)
//	// result.Probabilities[i] is how strongly point i belongs to its cluster
//	// result.OutlierScores[i] is how outlier-like point i is (0 = inlier, 1 = outlier)
//
// For precomputed distance matrices:
//
//	result, err := hdbscan.ClusterPrecomputed(distMatrix, n, cfg)
//
// The matrix must be symmetric with a zero diagonal. PairwiseDistances builds
// one from a Dataset in parallel.
//
// # Stateful clustering
//
// A Clusterer keeps a dataset and its latest labels so the same data can be
// re-clustered with a different minPoints. A failed run never replaces the
// committed labels:
//
//	c, err := hdbscan.New(5, hdbscan.WithLogger(logger))
//	err = c.Run(ctx, rows)
//	err = c.ReRun(ctx, 8)
//	labels, err := c.Labels()
//	stats, err := c.Stats(ctx)
//
// SelectMinPoints sweeps a minPoints range on a Clusterer and keeps the value
// whose clustering scores best under ClusteringStats.Validity.
//
// # Neighbor index
//
// Core distances are exact whichever index computes them. With IndexAuto,
// axis-decomposable metrics on data of up to 16 dimensions use a KD-tree;
// everything else scans all pairs. The spanning tree is always built with
// Prim's algorithm in O(n) memory, evaluating distances on demand.
//
//	cfg.NeighborIndex = hdbscan.IndexBrute
//	cfg.NeighborIndex = hdbscan.IndexKDTree
package hdbscan
