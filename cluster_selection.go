package hdbscan

// Cluster selection methods.
const (
	SelectionEOM  = "eom"
	SelectionLeaf = "leaf"
)

// SelectClustersEOM performs Excess-of-Mass selection with a bottom-up pass
// over the condensed tree. A leaf is provisionally selected with its own
// stability. An internal node is selected, and its descendants dropped, only
// when its own stability is strictly greater than the summed selected
// stability of its children; otherwise the children's selections propagate.
//
// Parameters:
//   - allowSingleCluster: the root is a candidate like any other node
//   - maxClusterSize: if > 0, nodes with more points always lose to their children
//   - satisfied: per-node satisfied constraint counts, or nil; when present the
//     count is compared first and stability only breaks ties
//
// When nothing ends up selected, the root is selected so every point gets a
// cluster. The result is indexed by node ID.
func SelectClustersEOM(t *CondensedTree, allowSingleCluster bool, maxClusterSize int, satisfied []int) []bool {
	selected := make([]bool, len(t.Nodes))
	propStability := make([]float64, len(t.Nodes))
	propSatisfied := make([]int, len(t.Nodes))

	ownSatisfied := func(id int) int {
		if satisfied == nil {
			return 0
		}
		return satisfied[id]
	}

	for id := len(t.Nodes) - 1; id >= 0; id-- {
		if id == t.Root() && !allowSingleCluster {
			break
		}
		node := t.Nodes[id]
		if len(node.Children) == 0 {
			selected[id] = true
			propStability[id] = node.Stability
			propSatisfied[id] = ownSatisfied(id)
			continue
		}

		childStability := 0.0
		childSatisfied := 0
		for _, c := range node.Children {
			childStability += propStability[c]
			childSatisfied += propSatisfied[c]
		}

		own := ownSatisfied(id)
		parentWins := own > childSatisfied ||
			(own == childSatisfied && node.Stability > childStability)
		if maxClusterSize > 0 && node.Size > maxClusterSize {
			parentWins = false
		}

		if parentWins {
			selected[id] = true
			propStability[id] = node.Stability
			propSatisfied[id] = own
			t.forEachDescendant(id, func(d int) { selected[d] = false })
		} else {
			propStability[id] = childStability
			propSatisfied[id] = childSatisfied
		}
	}

	forceRootIfEmpty(t, selected)
	return selected
}

// SelectClustersLeaf selects every leaf of the condensed tree. A tree with no
// splits selects its root.
func SelectClustersLeaf(t *CondensedTree) []bool {
	selected := make([]bool, len(t.Nodes))
	for id := 1; id < len(t.Nodes); id++ {
		if t.IsLeaf(id) {
			selected[id] = true
		}
	}
	forceRootIfEmpty(t, selected)
	return selected
}

// EpsilonSearch replaces every selected cluster born below the distance
// threshold epsilon (1/birth < epsilon) with its nearest ancestor born at or
// above it. The walk stops below the root unless allowSingleCluster is set.
// The returned selection is still an antichain.
func EpsilonSearch(t *CondensedTree, selected []bool, epsilon float64, allowSingleCluster bool) []bool {
	out := make([]bool, len(t.Nodes))
	for id, ok := range selected {
		if !ok {
			continue
		}
		if id == t.Root() || 1.0/t.Nodes[id].Birth >= epsilon {
			out[id] = true
			continue
		}
		out[traverseUpwards(t, id, epsilon, allowSingleCluster)] = true
	}

	// Drop anything under a selected ancestor.
	covered := make([]bool, len(t.Nodes))
	for id := 1; id < len(t.Nodes); id++ {
		p := t.Nodes[id].Parent
		covered[id] = covered[p] || out[p]
		if covered[id] {
			out[id] = false
		}
	}
	return out
}

// traverseUpwards walks from id towards the root and returns the first
// ancestor whose epsilon (1/birth) exceeds the threshold.
func traverseUpwards(t *CondensedTree, id int, epsilon float64, allowSingleCluster bool) int {
	for {
		parent := t.Nodes[id].Parent
		if parent == t.Root() {
			if allowSingleCluster {
				return parent
			}
			return id
		}
		if 1.0/t.Nodes[parent].Birth > epsilon {
			return parent
		}
		id = parent
	}
}

func forceRootIfEmpty(t *CondensedTree, selected []bool) {
	for _, ok := range selected {
		if ok {
			return
		}
	}
	selected[t.Root()] = true
}

// forEachDescendant calls fn for every strict descendant of id.
func (t *CondensedTree) forEachDescendant(id int, fn func(int)) {
	stack := append([]int(nil), t.Nodes[id].Children...)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(top)
		stack = append(stack, t.Nodes[top].Children...)
	}
}
