package hdbscan

import "math"

// PointEvent records a point leaving a cluster at Lambda.
type PointEvent struct {
	Point  int
	Lambda float64
}

// CondensedNode is one cluster of the condensed tree. Parent is -1 for the
// root. Birth is the lambda at which the cluster split off its parent (0 for
// the root), Death the last lambda at which it still had members.
type CondensedNode struct {
	ID        int
	Parent    int
	Children  []int
	Birth     float64
	Death     float64
	Size      int
	Stability float64
	Events    []PointEvent
}

// CondensedTree is the pruned cluster hierarchy, stored as an arena indexed by
// node ID. A child always has a larger ID than its parent, and the root is
// node 0.
//
// PointCluster[p] is the node point p fell out of and PointLambda[p] the
// lambda at which it did.
type CondensedTree struct {
	NumPoints    int
	Nodes        []CondensedNode
	PointCluster []int
	PointLambda  []float64
}

// CondensedTreeEntry is one row of the flat condensed tree export. Cluster
// IDs are offset by the number of points so that they never collide with
// point indices; ChildSize is 1 for point rows.
type CondensedTreeEntry struct {
	Parent    int
	Child     int
	LambdaVal float64
	ChildSize int
}

// lambdaOf converts a merge distance into a density level.
func lambdaOf(weight float64) float64 {
	if weight > 0.0 {
		return 1.0 / weight
	}
	return math.Inf(1)
}

// CondenseTree walks the dendrogram top-down and keeps only true splits, those
// where both sides have at least minClusterSize points. When only one side is
// large enough it continues as the same cluster and the points of the smaller
// side fall out. When neither side is, no node is emitted and every remaining
// point leaves the cluster at that lambda. minClusterSize below 2 is raised to
// 2. Stabilities are filled in before returning.
func CondenseTree(d *Dendrogram, minClusterSize int) *CondensedTree {
	minClusterSize = max(minClusterSize, 2)
	n := d.NumPoints

	t := &CondensedTree{
		NumPoints:    n,
		PointCluster: make([]int, n),
		PointLambda:  make([]float64, n),
	}
	t.Nodes = append(t.Nodes, CondensedNode{ID: 0, Parent: -1, Size: n})

	type frame struct {
		node    int // dendrogram node id
		cluster int // condensed node id the dendrogram node belongs to
	}
	queue := []frame{{node: d.Root(), cluster: 0}}
	var buf []int

	fallOut := func(cluster, subtree int, lambda float64) {
		buf = d.Leaves(buf[:0], subtree)
		for _, p := range buf {
			t.Nodes[cluster].Events = append(t.Nodes[cluster].Events, PointEvent{Point: p, Lambda: lambda})
			t.PointCluster[p] = cluster
			t.PointLambda[p] = lambda
		}
		t.extendDeath(cluster, lambda)
	}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		if d.IsLeaf(f.node) {
			// Only reachable for a single-point dendrogram.
			fallOut(f.cluster, f.node, math.Inf(1))
			continue
		}

		node := d.Node(f.node)
		lambda := lambdaOf(node.Weight)
		leftBig := d.Size(node.Left) >= minClusterSize
		rightBig := d.Size(node.Right) >= minClusterSize

		switch {
		case leftBig && rightBig:
			for _, child := range [2]int{node.Left, node.Right} {
				id := t.addChild(f.cluster, lambda, d.Size(child))
				queue = append(queue, frame{node: child, cluster: id})
			}
			t.extendDeath(f.cluster, lambda)

		case leftBig:
			fallOut(f.cluster, node.Right, lambda)
			queue = append(queue, frame{node: node.Left, cluster: f.cluster})

		case rightBig:
			fallOut(f.cluster, node.Left, lambda)
			queue = append(queue, frame{node: node.Right, cluster: f.cluster})

		default:
			fallOut(f.cluster, node.Left, lambda)
			fallOut(f.cluster, node.Right, lambda)
		}
	}

	ComputeStability(t)
	return t
}

func (t *CondensedTree) addChild(parent int, birth float64, size int) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, CondensedNode{
		ID:     id,
		Parent: parent,
		Birth:  birth,
		Death:  birth,
		Size:   size,
	})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	return id
}

func (t *CondensedTree) extendDeath(id int, lambda float64) {
	if lambda > t.Nodes[id].Death {
		t.Nodes[id].Death = lambda
	}
}

// Root returns the root node ID.
func (t *CondensedTree) Root() int { return 0 }

// IsLeaf reports whether node id has no child clusters.
func (t *CondensedTree) IsLeaf(id int) bool { return len(t.Nodes[id].Children) == 0 }

// Entries flattens the tree into (parent, child, lambda, childSize) rows:
// for every node in ID order, its point events followed by its child clusters.
func (t *CondensedTree) Entries() []CondensedTreeEntry {
	offset := t.NumPoints
	entries := make([]CondensedTreeEntry, 0, t.NumPoints+len(t.Nodes))
	for _, node := range t.Nodes {
		for _, ev := range node.Events {
			entries = append(entries, CondensedTreeEntry{
				Parent:    node.ID + offset,
				Child:     ev.Point,
				LambdaVal: ev.Lambda,
				ChildSize: 1,
			})
		}
		for _, c := range node.Children {
			child := t.Nodes[c]
			entries = append(entries, CondensedTreeEntry{
				Parent:    node.ID + offset,
				Child:     child.ID + offset,
				LambdaVal: child.Birth,
				ChildSize: child.Size,
			})
		}
	}
	return entries
}

// clone returns a deep copy of t.
func (t *CondensedTree) clone() *CondensedTree {
	c := &CondensedTree{
		NumPoints:    t.NumPoints,
		Nodes:        make([]CondensedNode, len(t.Nodes)),
		PointCluster: append([]int(nil), t.PointCluster...),
		PointLambda:  append([]float64(nil), t.PointLambda...),
	}
	for i, node := range t.Nodes {
		node.Children = append([]int(nil), node.Children...)
		node.Events = append([]PointEvent(nil), node.Events...)
		c.Nodes[i] = node
	}
	return c
}
