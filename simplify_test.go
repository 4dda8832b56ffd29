package hdbscan

import "testing"

func TestSimplifyHierarchy_LowPersistenceLeavesRemoved(t *testing.T) {
	tree := sixPointTree(t)

	// Nodes 3 and 4 persist 1/3-0.2 ≈ 0.133; nodes 1 and 2 persist 0.2.
	out := SimplifyHierarchy(tree, 0.15)

	if len(out.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(out.Nodes))
	}
	if !out.IsLeaf(1) || !out.IsLeaf(2) {
		t.Errorf("nodes 1 and 2 should now be leaves")
	}
	for p := 0; p < 4; p++ {
		if out.PointCluster[p] != 1 {
			t.Errorf("PointCluster[%d] = %d, want 1", p, out.PointCluster[p])
		}
	}
	assertFloat(t, "node 1 death", out.Nodes[1].Death, 1, 1e-12)
	// (1-0.2)*2 + (2/3-0.2)*2
	assertFloat(t, "node 1 stability", out.Nodes[1].Stability, 1.6+(2.0/3.0-0.2)*2, 1e-12)

	// The input is untouched.
	if len(tree.Nodes) != 5 {
		t.Errorf("input tree modified: %d nodes", len(tree.Nodes))
	}
}

func TestSimplifyHierarchy_CascadesToParents(t *testing.T) {
	out := SimplifyHierarchy(sixPointTree(t), 0.25)

	if len(out.Nodes) != 1 {
		t.Fatalf("expected only the root, got %d nodes", len(out.Nodes))
	}
	if len(out.Nodes[0].Events) != 6 {
		t.Errorf("root has %d events, want 6", len(out.Nodes[0].Events))
	}
	// 2*1 + 2*(2/3) + 2*0.5
	assertFloat(t, "root stability", out.Nodes[0].Stability, 2+4.0/3.0+1, 1e-12)
}

func TestSimplifyHierarchy_ThresholdZeroIsCopy(t *testing.T) {
	tree := sixPointTree(t)
	out := SimplifyHierarchy(tree, 0)

	if len(out.Nodes) != len(tree.Nodes) {
		t.Fatalf("got %d nodes, want %d", len(out.Nodes), len(tree.Nodes))
	}
	for i := range tree.Nodes {
		if out.Nodes[i].Stability != tree.Nodes[i].Stability {
			t.Errorf("node %d stability changed", i)
		}
	}
	out.Nodes[0].Children[0] = 42
	if tree.Nodes[0].Children[0] == 42 {
		t.Error("result shares memory with the input")
	}
}

func TestSimplifyHierarchy_HighPersistenceKept(t *testing.T) {
	out := SimplifyHierarchy(sixPointTree(t), 0.1)
	if len(out.Nodes) != 5 {
		t.Errorf("expected all 5 nodes kept, got %d", len(out.Nodes))
	}
}
