package hdbscan

import (
	"context"
	"errors"
	"math"
	"testing"
)

// matrixGraph is a WeightedGraph over an explicit n×n matrix.
type matrixGraph [][]float64

func (g matrixGraph) Len() int                { return len(g) }
func (g matrixGraph) Weight(i, j int) float64 { return g[i][j] }

// flatMatrix builds a flat n×n row-major matrix from a 2D slice.
func flatMatrix(m [][]float64) []float64 {
	n := len(m)
	flat := make([]float64, n*n)
	for i := range m {
		copy(flat[i*n:], m[i])
	}
	return flat
}

func mustPrim(t *testing.T, g WeightedGraph) []Edge {
	t.Helper()
	edges, err := PrimMST(context.Background(), g)
	if err != nil {
		t.Fatalf("PrimMST: %v", err)
	}
	return edges
}

func TestPrimMST_FourPointKnownMST(t *testing.T) {
	// Known MST edges (by weight): {0,1}=1, {2,3}=1, {1,2}=2  total=4
	edges := mustPrim(t, matrixGraph{
		{0, 1, 3, 4},
		{1, 0, 2, 5},
		{3, 2, 0, 1},
		{4, 5, 1, 0},
	})

	if len(edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(edges))
	}
	if total := TotalWeight(edges); math.Abs(total-4.0) > 1e-10 {
		t.Errorf("expected total MST weight 4.0, got %f", total)
	}

	// Attachment order from node 0: 1, then 2, then 3.
	want := []Edge{{0, 1, 1}, {1, 2, 2}, {2, 3, 1}}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestPrimMST_SixPoint(t *testing.T) {
	// MST (greedy): {0,1}=1, {1,2}=2, {2,3}=3, {3,4}=5, {4,5}=6  total=17
	edges := mustPrim(t, matrixGraph{
		{0, 1, 4, 7, 10, 13},
		{1, 0, 2, 6, 9, 12},
		{4, 2, 0, 3, 8, 11},
		{7, 6, 3, 0, 5, 10},
		{10, 9, 8, 5, 0, 6},
		{13, 12, 11, 10, 6, 0},
	})

	if len(edges) != 5 {
		t.Fatalf("expected 5 edges, got %d", len(edges))
	}
	if total := TotalWeight(edges); math.Abs(total-17.0) > 1e-10 {
		t.Errorf("expected total MST weight 17.0, got %f", total)
	}
}

func TestPrimMST_TiesFirstDiscoveredLowestIndex(t *testing.T) {
	// Every edge weighs 1. Node 1 is attached first (lowest index among
	// equal candidates), and node 2 keeps its first-discovered source 0.
	edges := mustPrim(t, matrixGraph{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	})

	want := []Edge{{0, 1, 1}, {0, 2, 1}}
	for i, e := range edges {
		if e != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, e, want[i])
		}
	}
}

func TestPrimMST_Deterministic(t *testing.T) {
	g := matrixGraph{
		{0, 2, 2, 2},
		{2, 0, 2, 2},
		{2, 2, 0, 2},
		{2, 2, 2, 0},
	}
	first := mustPrim(t, g)
	for run := 0; run < 5; run++ {
		again := mustPrim(t, g)
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d edge %d = %+v, want %+v", run, i, again[i], first[i])
			}
		}
	}
}

func TestPrimMST_InfEdgeInMST(t *testing.T) {
	// Node 2 is unreachable except through +Inf edges.
	inf := math.Inf(1)
	edges := mustPrim(t, matrixGraph{
		{0, 2, inf},
		{2, 0, inf},
		{inf, inf, 0},
	})

	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if !hasInfiniteEdge(edges) {
		t.Error("expected a +Inf edge in MST")
	}
}

func TestPrimMST_SmallGraphs(t *testing.T) {
	if edges := mustPrim(t, matrixGraph{{0}}); len(edges) != 0 {
		t.Errorf("n=1: expected 0 edges, got %d", len(edges))
	}

	edges := mustPrim(t, matrixGraph{{0, 5}, {5, 0}})
	if len(edges) != 1 || edges[0].Weight != 5 {
		t.Errorf("n=2: got %+v, want one edge of weight 5", edges)
	}
}

func TestPrimMST_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := PrimMST(ctx, matrixGraph{{0, 1}, {1, 0}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPrimMST_MatchesKruskalWeight(t *testing.T) {
	data := [][]float64{
		{0, 0}, {1, 0.5}, {2.2, 0}, {5, 5}, {5.5, 4}, {9, 1}, {0.3, 7}, {4, 4.2},
	}
	ds, err := NewDataset(data)
	if err != nil {
		t.Fatal(err)
	}
	n := ds.Len()
	dist := ComputePairwiseDistances(ds.flat(), n, ds.Dims(), EuclideanMetric{})
	g := &precomputedReachability{dist: dist, core: make([]float64, n), n: n, alpha: 1}

	prim := TotalWeight(mustPrim(t, g))
	kruskal := kruskalWeight(dist, n)
	if math.Abs(prim-kruskal) > 1e-9 {
		t.Errorf("Prim weight %v != Kruskal weight %v", prim, kruskal)
	}
}

// kruskalWeight is a reference MST weight computed by sorting all edges.
func kruskalWeight(dist []float64, n int) float64 {
	var all []Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			all = append(all, Edge{From: i, To: j, Weight: dist[i*n+j]})
		}
	}
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].Weight < all[j-1].Weight; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	total := 0.0
	for _, e := range all {
		a, b := find(e.From), find(e.To)
		if a != b {
			parent[a] = b
			total += e.Weight
		}
	}
	return total
}
