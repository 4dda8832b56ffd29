package hdbscan

import (
	"context"
	"math"
)

// Edge is an MST edge weighted by mutual reachability distance.
type Edge struct {
	From, To int
	Weight   float64
}

// PrimMST computes a minimum spanning tree of g with Prim's algorithm, starting
// from node 0. It uses O(n) memory: per unvisited node it keeps the best known
// weight to the growing tree and the tree node that produced it.
//
// Ties are deterministic. A node's best edge is replaced only by a strictly
// lighter one, so the first-discovered edge wins; among equally cheap
// unvisited nodes the lowest index is attached next.
//
// Returns n-1 edges in attachment order, or ctx.Err() if cancelled.
func PrimMST(ctx context.Context, g WeightedGraph) ([]Edge, error) {
	n := g.Len()
	if n <= 1 {
		return nil, nil
	}

	inTree := make([]bool, n)
	bestWeight := make([]float64, n)
	bestSource := make([]int, n)
	for j := range bestWeight {
		bestWeight[j] = math.Inf(1)
	}

	edges := make([]Edge, 0, n-1)
	current := 0
	for len(edges) < n-1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inTree[current] = true

		next := -1
		for j := 0; j < n; j++ {
			if inTree[j] {
				continue
			}
			if w := g.Weight(current, j); w < bestWeight[j] {
				bestWeight[j] = w
				bestSource[j] = current
			}
			if next == -1 || bestWeight[j] < bestWeight[next] {
				next = j
			}
		}

		edges = append(edges, Edge{From: bestSource[next], To: next, Weight: bestWeight[next]})
		current = next
	}

	return edges, nil
}

// TotalWeight sums the weights of edges.
func TotalWeight(edges []Edge) float64 {
	total := 0.0
	for _, e := range edges {
		total += e.Weight
	}
	return total
}

// hasInfiniteEdge reports whether any edge has +Inf weight (disconnected input).
func hasInfiniteEdge(edges []Edge) bool {
	for _, e := range edges {
		if math.IsInf(e.Weight, 1) {
			return true
		}
	}
	return false
}
