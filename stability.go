package hdbscan

import "math"

// ComputeStability fills in the stability of every node of t and reports
// whether any stability is infinite.
//
// The stability of a cluster C born at lambda b is
//
//	sum over points p leaving C at lambda l of (l - b)
//
// where a point that moves into a child cluster leaves C at the child's birth
// lambda. A point leaving at the birth lambda itself contributes nothing, even
// when both are infinite.
func ComputeStability(t *CondensedTree) (infinite bool) {
	for i := range t.Nodes {
		node := &t.Nodes[i]
		s := 0.0
		for _, ev := range node.Events {
			s += persistence(ev.Lambda, node.Birth)
		}
		for _, c := range node.Children {
			child := t.Nodes[c]
			s += persistence(child.Birth, node.Birth) * float64(child.Size)
		}
		node.Stability = s
		if math.IsInf(s, 1) {
			infinite = true
		}
	}
	return infinite
}

func persistence(lambda, birth float64) float64 {
	if lambda == birth {
		return 0
	}
	return lambda - birth
}
