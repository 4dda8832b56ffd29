package hdbscan

import (
	"container/heap"
	"context"
	"math"
	"sort"
)

// KDTree is an exact nearest-neighbor index over a Dataset. Nodes live in an
// arena; each node covers a contiguous range of the permutation array perm
// and stores the bounding box of its points.
type KDTree struct {
	ds       *Dataset
	metric   DistanceMetric
	leafSize int
	perm     []int // tree-order position -> point index
	nodes    []kdNode
	boxMin   []float64 // boxMin[node*dims+j]
	boxMax   []float64
}

type kdNode struct {
	start, end  int // range in perm
	left, right int // child node IDs, -1 for leaves
}

// NewKDTree builds a KD-tree over ds. metric must decompose along coordinate
// axes (see KDTreeValidMetric). leafSize below 1 is raised to 1.
func NewKDTree(ds *Dataset, metric DistanceMetric, leafSize int) *KDTree {
	leafSize = max(leafSize, 1)
	n := ds.Len()
	t := &KDTree{
		ds:       ds,
		metric:   metric,
		leafSize: leafSize,
		perm:     make([]int, n),
	}
	for i := range t.perm {
		t.perm[i] = i
	}
	t.build(0, n)
	return t
}

// build creates the node for perm[start:end] and returns its ID.
func (t *KDTree) build(start, end int) int {
	dims := t.ds.Dims()
	id := len(t.nodes)
	t.nodes = append(t.nodes, kdNode{start: start, end: end, left: -1, right: -1})
	t.boxMin = append(t.boxMin, make([]float64, dims)...)
	t.boxMax = append(t.boxMax, make([]float64, dims)...)

	lo, hi := t.boxMin[id*dims:(id+1)*dims], t.boxMax[id*dims:(id+1)*dims]
	for j := range lo {
		lo[j], hi[j] = math.Inf(1), math.Inf(-1)
	}
	for _, p := range t.perm[start:end] {
		for j, v := range t.ds.Row(p) {
			lo[j] = math.Min(lo[j], v)
			hi[j] = math.Max(hi[j], v)
		}
	}

	if end-start <= t.leafSize {
		return id
	}

	// Split the widest dimension at the median. Ties keep index order so the
	// layout is deterministic.
	split, spread := 0, -1.0
	for j := range lo {
		if s := hi[j] - lo[j]; s > spread {
			split, spread = j, s
		}
	}
	sub := t.perm[start:end]
	sort.SliceStable(sub, func(a, b int) bool {
		return t.ds.Row(sub[a])[split] < t.ds.Row(sub[b])[split]
	})
	mid := start + (end-start)/2

	left := t.build(start, mid)
	right := t.build(mid, end)
	t.nodes[id].left, t.nodes[id].right = left, right
	return id
}

// Len returns the number of indexed points.
func (t *KDTree) Len() int { return len(t.perm) }

// NumNodes returns the number of tree nodes.
func (t *KDTree) NumNodes() int { return len(t.nodes) }

// minDist is a lower bound on the distance from point to any point in node.
func (t *KDTree) minDist(node int, point []float64) float64 {
	dims := len(point)
	lo, hi := t.boxMin[node*dims:(node+1)*dims], t.boxMax[node*dims:(node+1)*dims]
	gap := func(j int) float64 {
		switch {
		case point[j] < lo[j]:
			return lo[j] - point[j]
		case point[j] > hi[j]:
			return point[j] - hi[j]
		default:
			return 0
		}
	}

	switch m := t.metric.(type) {
	case ChebyshevMetric:
		var d float64
		for j := range point {
			d = math.Max(d, gap(j))
		}
		return d
	case ManhattanMetric:
		var d float64
		for j := range point {
			d += gap(j)
		}
		return d
	case MinkowskiMetric:
		var d float64
		for j := range point {
			d += math.Pow(gap(j), m.P)
		}
		return math.Pow(d, 1/m.P)
	default:
		var d float64
		for j := range point {
			g := gap(j)
			d += g * g
		}
		return math.Sqrt(d)
	}
}

// KthNeighborDistance returns the distance from point i to its k-th nearest
// other point. k must be in [1, Len()-1].
func (t *KDTree) KthNeighborDistance(i, k int) float64 {
	h := make(neighborHeap, 0, k)
	t.search(0, i, t.ds.Row(i), k, &h)
	return h[0]
}

func (t *KDTree) search(node, self int, query []float64, k int, h *neighborHeap) {
	nd := t.nodes[node]
	if nd.left < 0 {
		for _, p := range t.perm[nd.start:nd.end] {
			if p == self {
				continue
			}
			d := t.metric.Distance(query, t.ds.Row(p))
			switch {
			case h.Len() < k:
				heap.Push(h, d)
			case d < (*h)[0]:
				(*h)[0] = d
				heap.Fix(h, 0)
			}
		}
		return
	}

	near, far := nd.left, nd.right
	nearDist, farDist := t.minDist(near, query), t.minDist(far, query)
	if farDist < nearDist {
		near, far = far, near
		farDist = nearDist
	}
	t.search(near, self, query, k, h)
	if h.Len() < k || farDist < (*h)[0] {
		t.search(far, self, query, k, h)
	}
}

// neighborHeap is a max-heap of distances bounded at k entries.
type neighborHeap []float64

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *neighborHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// CoreDistancesKDTree computes the same core distances as CoreDistances using
// a KD-tree. Queries are sharded across numWorkers goroutines.
func CoreDistancesKDTree(ctx context.Context, ds *Dataset, metric DistanceMetric, minPoints, numWorkers, leafSize int) ([]float64, error) {
	n := ds.Len()
	if err := validateMinPoints(minPoints, n); err != nil {
		return nil, err
	}
	if !KDTreeValidMetric(metric) {
		return nil, validationErrorf("Metric", "%s is not supported by the KD-tree index", metricName(metric))
	}

	tree := NewKDTree(ds, metric, leafSize)
	core := make([]float64, n)
	err := forEachRowBlock(ctx, n, numWorkers, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			core[i] = tree.KthNeighborDistance(i, minPoints)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return core, nil
}
