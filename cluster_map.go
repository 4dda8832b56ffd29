package hdbscan

import "sort"

// ClusterMap groups point indices by label. Clusters[l] holds the members of
// label l in ascending order; Noise holds the unassigned points.
type ClusterMap struct {
	Clusters [][]int
	Noise    []int
}

// NewClusterMap groups labels by cluster. Labels must be Noise or in
// [0, numClusters).
func NewClusterMap(labels []int, numClusters int) *ClusterMap {
	cm := &ClusterMap{Clusters: make([][]int, numClusters)}
	for p, l := range labels {
		if l == Noise {
			cm.Noise = append(cm.Noise, p)
			continue
		}
		cm.Clusters[l] = append(cm.Clusters[l], p)
	}
	return cm
}

// Len returns the number of clusters, excluding noise.
func (cm *ClusterMap) Len() int { return len(cm.Clusters) }

// Members returns the points with the given label. Noise returns the noise
// points; an unknown label returns nil.
func (cm *ClusterMap) Members(label int) []int {
	if label == Noise {
		return cm.Noise
	}
	if label < 0 || label >= len(cm.Clusters) {
		return nil
	}
	return cm.Clusters[label]
}

// SortByLength returns the cluster labels ordered by decreasing size. Equal
// sizes keep ascending label order.
func (cm *ClusterMap) SortByLength() []int {
	order := make([]int, len(cm.Clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(cm.Clusters[order[a]]) > len(cm.Clusters[order[b]])
	})
	return order
}

// AsMap returns the grouping keyed by label, with noise under Noise.
func (cm *ClusterMap) AsMap() map[int][]int {
	m := make(map[int][]int, len(cm.Clusters)+1)
	for l, members := range cm.Clusters {
		m[l] = members
	}
	if len(cm.Noise) > 0 {
		m[Noise] = cm.Noise
	}
	return m
}
