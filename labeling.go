package hdbscan

import "math"

// Noise is the label of points outside every selected cluster.
const Noise = -1

// AssignLabels labels every point with the first selected cluster on the path
// from the node it fell out of up to the root, or Noise when there is none.
// Selected clusters are numbered 0, 1, ... in ascending node ID order;
// clusterNodes maps each label back to its node.
func AssignLabels(t *CondensedTree, selected []bool) (labels []int, clusterNodes []int) {
	labelOf := make([]int, len(t.Nodes))
	for id := range t.Nodes {
		labelOf[id] = Noise
		if selected[id] {
			labelOf[id] = len(clusterNodes)
			clusterNodes = append(clusterNodes, id)
		}
	}

	// Parents precede children, so one forward pass resolves the innermost
	// selected ancestor of every node.
	owner := make([]int, len(t.Nodes))
	for id, node := range t.Nodes {
		switch {
		case selected[id]:
			owner[id] = labelOf[id]
		case node.Parent >= 0:
			owner[id] = owner[node.Parent]
		default:
			owner[id] = Noise
		}
	}

	labels = make([]int, t.NumPoints)
	for p, c := range t.PointCluster {
		labels[p] = owner[c]
	}
	return labels, clusterNodes
}

// MembershipProbabilities scales each clustered point's fall-out lambda into
// its cluster's [birth, death] lambda range:
//
//	(min(lambda_p, death) - birth) / (death - birth)
//
// Points that never leave (infinite lambda) or clusters with an empty range
// get 1; noise gets 0.
func MembershipProbabilities(t *CondensedTree, labels, clusterNodes []int) []float64 {
	probs := make([]float64, len(labels))
	for p, label := range labels {
		if label == Noise {
			continue
		}
		node := t.Nodes[clusterNodes[label]]
		lambda := t.PointLambda[p]
		span := node.Death - node.Birth
		if math.IsInf(lambda, 1) || math.IsInf(span, 1) || math.IsNaN(span) || span <= 0 {
			probs[p] = 1
			continue
		}
		probs[p] = clamp01((min(lambda, node.Death) - node.Birth) / span)
	}
	return probs
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
