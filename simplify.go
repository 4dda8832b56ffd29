package hdbscan

// SimplifyHierarchy folds low-persistence leaf clusters back into their
// parents. A cluster's persistence is its birth lambda minus its parent's
// birth lambda. Folding repeats bottom-up, so a parent left without children
// may be folded in turn. The root is never removed.
//
// The folded cluster's points fall out of the nearest surviving ancestor at
// their original lambdas. Returns a new tree with compact IDs and recomputed
// deaths and stabilities; t is not modified.
func SimplifyHierarchy(t *CondensedTree, persistenceThreshold float64) *CondensedTree {
	if persistenceThreshold <= 0 || len(t.Nodes) <= 1 {
		return t.clone()
	}

	// Children always have larger IDs, so a reverse scan decides every child
	// before its parent.
	removed := make([]bool, len(t.Nodes))
	anyRemoved := false
	for id := len(t.Nodes) - 1; id > 0; id-- {
		node := t.Nodes[id]
		hasSurvivingChild := false
		for _, c := range node.Children {
			if !removed[c] {
				hasSurvivingChild = true
				break
			}
		}
		if hasSurvivingChild {
			continue
		}
		if node.Birth-t.Nodes[node.Parent].Birth < persistenceThreshold {
			removed[id] = true
			anyRemoved = true
		}
	}
	if !anyRemoved {
		return t.clone()
	}

	// survivor[id] is id itself or its nearest kept ancestor; newID renumbers
	// kept nodes in their original order.
	survivor := make([]int, len(t.Nodes))
	newID := make([]int, len(t.Nodes))
	next := 0
	for id, node := range t.Nodes {
		if removed[id] {
			survivor[id] = survivor[node.Parent]
			continue
		}
		survivor[id] = id
		newID[id] = next
		next++
	}

	out := &CondensedTree{
		NumPoints:    t.NumPoints,
		Nodes:        make([]CondensedNode, 0, next),
		PointCluster: make([]int, t.NumPoints),
		PointLambda:  append([]float64(nil), t.PointLambda...),
	}
	for id, node := range t.Nodes {
		if removed[id] {
			continue
		}
		parent := -1
		if node.Parent >= 0 {
			parent = newID[node.Parent]
		}
		out.Nodes = append(out.Nodes, CondensedNode{
			ID:     newID[id],
			Parent: parent,
			Birth:  node.Birth,
			Death:  node.Birth,
			Size:   node.Size,
		})
	}
	for id, node := range t.Nodes {
		target := newID[survivor[id]]
		out.Nodes[target].Events = append(out.Nodes[target].Events, node.Events...)
		if !removed[id] && node.Parent >= 0 {
			p := newID[node.Parent]
			out.Nodes[p].Children = append(out.Nodes[p].Children, newID[id])
		}
	}
	for p, c := range t.PointCluster {
		out.PointCluster[p] = newID[survivor[c]]
	}
	for i := range out.Nodes {
		node := &out.Nodes[i]
		for _, ev := range node.Events {
			out.extendDeath(i, ev.Lambda)
		}
		for _, c := range node.Children {
			out.extendDeath(i, out.Nodes[c].Birth)
		}
	}

	ComputeStability(out)
	return out
}
