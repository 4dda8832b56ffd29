package hdbscan

import (
	"fmt"
	"sort"
)

// DendrogramNode is one internal merge of the single-linkage tree. Left and
// Right are node ids: ids below NumPoints are points, the rest are merges.
type DendrogramNode struct {
	Left, Right int
	Weight      float64
	Size        int
}

// Dendrogram is the binary single-linkage merge tree over n points, stored as
// an arena: internal node id n+i is Nodes[i], and the root is id 2n-2.
type Dendrogram struct {
	NumPoints int
	Nodes     []DendrogramNode
}

// BuildDendrogram replays MST edges in ascending weight order through a
// union-find structure, creating one internal node per edge. Equal weights
// keep the order in which the MST discovered them.
//
// Returns a *DegenerateInputError when n < 2, and an error when edges is not
// a spanning tree of n points.
func BuildDendrogram(edges []Edge, n int) (*Dendrogram, error) {
	if n < 2 {
		return nil, &DegenerateInputError{Points: n, DistinctPoints: n, Reason: "need at least 2 points to build a hierarchy"}
	}
	if len(edges) != n-1 {
		return nil, fmt.Errorf("hdbscan: spanning tree over %d points needs %d edges, got %d", n, n-1, len(edges))
	}

	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight < sorted[j].Weight
	})

	uf := NewUnionFind(n)
	nodes := make([]DendrogramNode, 0, n-1)
	for _, e := range sorted {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return nil, fmt.Errorf("hdbscan: edge (%d, %d) out of range for %d points", e.From, e.To, n)
		}
		a := uf.Find(e.From)
		b := uf.Find(e.To)
		if a == b {
			return nil, fmt.Errorf("hdbscan: edge (%d, %d) closes a cycle", e.From, e.To)
		}
		nodes = append(nodes, DendrogramNode{
			Left:   a,
			Right:  b,
			Weight: e.Weight,
			Size:   uf.Size(a) + uf.Size(b),
		})
		uf.Merge(a, b)
	}

	return &Dendrogram{NumPoints: n, Nodes: nodes}, nil
}

// Root returns the id of the node covering every point.
func (d *Dendrogram) Root() int { return 2*d.NumPoints - 2 }

// IsLeaf reports whether id is a point.
func (d *Dendrogram) IsLeaf(id int) bool { return id < d.NumPoints }

// Size returns the number of points under id.
func (d *Dendrogram) Size(id int) int {
	if d.IsLeaf(id) {
		return 1
	}
	return d.Nodes[id-d.NumPoints].Size
}

// Node returns the merge record of internal node id.
func (d *Dendrogram) Node(id int) DendrogramNode { return d.Nodes[id-d.NumPoints] }

// Leaves appends every point under id to dst and returns it.
func (d *Dendrogram) Leaves(dst []int, id int) []int {
	stack := []int{id}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if d.IsLeaf(top) {
			dst = append(dst, top)
			continue
		}
		node := d.Node(top)
		stack = append(stack, node.Right, node.Left)
	}
	return dst
}

// Linkage returns the dendrogram in scipy linkage format: one row
// [left, right, distance, size] per merge.
func (d *Dendrogram) Linkage() [][4]float64 {
	rows := make([][4]float64, len(d.Nodes))
	for i, node := range d.Nodes {
		rows[i] = [4]float64{float64(node.Left), float64(node.Right), node.Weight, float64(node.Size)}
	}
	return rows
}
