package hdbscan

import (
	"sort"
	"testing"
)

func TestBuildDendrogram_FourPointMST(t *testing.T) {
	// Sorted replay: [0,2,1.0], [2,3,1.0], [0,1,2.0].
	//   edge 0-2: new node 4 = {0,2}
	//   edge 2-3: find(2)=4, new node 5 = {4,3}
	//   edge 0-1: find(0)=5, new node 6 = {5,1}
	edges := []Edge{
		{From: 0, To: 1, Weight: 2.0},
		{From: 0, To: 2, Weight: 1.0},
		{From: 2, To: 3, Weight: 1.0},
	}

	d, err := BuildDendrogram(edges, 4)
	if err != nil {
		t.Fatal(err)
	}

	want := [][4]float64{
		{0, 2, 1.0, 2},
		{4, 3, 1.0, 3},
		{5, 1, 2.0, 4},
	}
	got := d.Linkage()
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
	if d.Root() != 6 {
		t.Errorf("Root() = %d, want 6", d.Root())
	}
	if d.Size(d.Root()) != 4 {
		t.Errorf("Size(root) = %d, want 4", d.Size(d.Root()))
	}
}

func TestBuildDendrogram_EqualWeightsKeepMSTOrder(t *testing.T) {
	edges := []Edge{
		{From: 2, To: 3, Weight: 1},
		{From: 0, To: 1, Weight: 1},
		{From: 1, To: 2, Weight: 1},
	}
	d, err := BuildDendrogram(edges, 4)
	if err != nil {
		t.Fatal(err)
	}
	if n := d.Nodes[0]; n.Left != 2 || n.Right != 3 {
		t.Errorf("first merge = (%d,%d), want (2,3)", n.Left, n.Right)
	}
	if n := d.Nodes[1]; n.Left != 0 || n.Right != 1 {
		t.Errorf("second merge = (%d,%d), want (0,1)", n.Left, n.Right)
	}
}

func TestBuildDendrogram_Leaves(t *testing.T) {
	d, err := BuildDendrogram(sixPointEdges(), 6)
	if err != nil {
		t.Fatal(err)
	}

	leaves := d.Leaves(nil, d.Root())
	sort.Ints(leaves)
	for i, p := range leaves {
		if p != i {
			t.Fatalf("Leaves(root) = %v, want 0..5", leaves)
		}
	}
	if got := d.Leaves(nil, 3); len(got) != 1 || got[0] != 3 {
		t.Errorf("Leaves(3) = %v, want [3]", got)
	}
	// Node 6 merges points 0 and 1.
	if got := d.Leaves(nil, 6); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Leaves(6) = %v, want [0 1]", got)
	}
}

func TestBuildDendrogram_Errors(t *testing.T) {
	if _, err := BuildDendrogram(nil, 1); !IsDegenerate(err) {
		t.Errorf("n=1: err = %v, want degenerate input error", err)
	}
	if _, err := BuildDendrogram([]Edge{{0, 1, 1}}, 3); err == nil {
		t.Error("too few edges: expected error")
	}
	if _, err := BuildDendrogram([]Edge{{0, 1, 1}, {1, 0, 2}}, 3); err == nil {
		t.Error("cycle: expected error")
	}
	if _, err := BuildDendrogram([]Edge{{0, 5, 1}}, 2); err == nil {
		t.Error("out-of-range edge: expected error")
	}
}
