package hdbscan

// UnionFind is a disjoint-set forest over the 2n-1 node ids of a dendrogram:
// points 0..n-1 and merged components n..2n-2. Merge creates the next
// component id, so a component's root is always its dendrogram node.
type UnionFind struct {
	parent []int
	size   []int
	// nextLabel is the ID for the next merged component, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n points.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{
		parent:    parent,
		size:      size,
		nextLabel: n,
	}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Size returns the number of points under root.
func (uf *UnionFind) Size(root int) int { return uf.size[root] }

// Merge joins the components rooted at a and b under a fresh component id and
// returns that id. a and b must be distinct roots.
func (uf *UnionFind) Merge(a, b int) int {
	label := uf.nextLabel
	uf.nextLabel++
	uf.parent[a] = label
	uf.parent[b] = label
	uf.size[label] = uf.size[a] + uf.size[b]
	return label
}
