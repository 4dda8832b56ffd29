package hdbscan

import "math"

// OutlierScores computes GLOSH outlier scores in [0, 1]:
//
//	(maxLambda - lambda_p) / maxLambda
//
// where maxLambda is the largest finite lambda reached anywhere in the subtree
// of the node point p fell out of. Points that never leave (infinite lambda)
// score 0.
func OutlierScores(t *CondensedTree) []float64 {
	// Children have larger IDs, so a reverse pass propagates subtree maxima.
	maxLambda := make([]float64, len(t.Nodes))
	for id := len(t.Nodes) - 1; id >= 0; id-- {
		node := t.Nodes[id]
		m := finiteOrZero(node.Death)
		for _, ev := range node.Events {
			m = max(m, finiteOrZero(ev.Lambda))
		}
		for _, c := range node.Children {
			m = max(m, maxLambda[c])
		}
		maxLambda[id] = m
	}

	scores := make([]float64, t.NumPoints)
	for p, c := range t.PointCluster {
		lambda := t.PointLambda[p]
		lambdaMax := maxLambda[c]
		if lambdaMax == 0 || math.IsInf(lambda, 1) {
			continue
		}
		scores[p] = clamp01((lambdaMax - lambda) / lambdaMax)
	}
	return scores
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
