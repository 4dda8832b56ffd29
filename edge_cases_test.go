package hdbscan

import (
	"math"
	"testing"
)

func TestEdgeCase_TwoPoints(t *testing.T) {
	res := mustCluster(t, [][]float64{{0, 0}, {3, 4}}, configWithMinPoints(1))

	assertLabelInvariants(t, res, 2)
	if res.Labels[0] != 0 || res.Labels[1] != 0 {
		t.Errorf("labels = %v, want both in the forced root cluster", res.Labels)
	}
}

func TestEdgeCase_AllIdenticalPoints(t *testing.T) {
	data := make([][]float64, 8)
	for i := range data {
		data[i] = []float64{2.5, -1, 7}
	}

	res := mustCluster(t, data, configWithMinPoints(3))
	if res.Degenerate == nil {
		t.Fatal("expected Degenerate to be set")
	}
	if !IsDegenerate(res.Degenerate) {
		t.Errorf("Degenerate does not match ErrDegenerateInput")
	}
	if res.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", res.NumClusters)
	}
	for i := range data {
		if res.Labels[i] != 0 || res.Probabilities[i] != 1 || res.OutlierScores[i] != 0 {
			t.Errorf("point %d: label %d prob %v score %v, want 0/1/0",
				i, res.Labels[i], res.Probabilities[i], res.OutlierScores[i])
		}
	}
}

func TestEdgeCase_IdenticalPrecomputed(t *testing.T) {
	res, err := ClusterPrecomputed(make([]float64, 9), 3, configWithMinPoints(1))
	if err != nil {
		t.Fatal(err)
	}
	if res.Degenerate == nil || res.NumClusters != 1 {
		t.Errorf("expected a degenerate single cluster, got %+v", res)
	}
}

func TestEdgeCase_DuplicateGroups(t *testing.T) {
	// Two groups of exact duplicates: zero core distances, infinite lambdas.
	var data [][]float64
	for i := 0; i < 5; i++ {
		data = append(data, []float64{0, 0})
	}
	for i := 0; i < 5; i++ {
		data = append(data, []float64{10, 10})
	}

	res := mustCluster(t, data, configWithMinPoints(3))
	assertLabelInvariants(t, res, len(data))
	if res.Degenerate != nil {
		t.Error("two distinct points should not be degenerate")
	}
	if res.NumClusters != 2 {
		t.Fatalf("NumClusters = %d, want 2 (labels %v)", res.NumClusters, res.Labels)
	}
	if res.Labels[0] == res.Labels[5] {
		t.Errorf("groups share label %d", res.Labels[0])
	}
	for i := range data {
		if res.Probabilities[i] != 1 || res.OutlierScores[i] != 0 {
			t.Errorf("point %d: prob %v score %v, want 1 and 0", i, res.Probabilities[i], res.OutlierScores[i])
		}
	}
}

func TestEdgeCase_MinClusterSizeGreaterThanN(t *testing.T) {
	cfg := configWithMinPoints(2)
	cfg.MinClusterSize = 50
	res := mustCluster(t, threeClusterData(), cfg)

	// Nothing can split, so the root is forced.
	if res.NumClusters != 1 {
		t.Errorf("NumClusters = %d, want 1", res.NumClusters)
	}
}

func TestEdgeCase_SingleClusterWithAllowSingleCluster(t *testing.T) {
	data := make([][]float64, 20)
	for i := range data {
		data[i] = []float64{float64(i) * 0.01, float64(i) * 0.01}
	}
	cfg := configWithMinPoints(5)
	cfg.AllowSingleCluster = true

	res := mustCluster(t, data, cfg)
	assertLabelInvariants(t, res, 20)
	assertScoresInRange(t, res)
}

func TestEdgeCase_InfInDistanceMatrix(t *testing.T) {
	n := 5
	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			switch {
			case i == j:
			case (i == 0 && j == 4) || (i == 4 && j == 0):
				dist[i*n+j] = math.Inf(1)
			default:
				dist[i*n+j] = math.Abs(float64(i - j))
			}
		}
	}

	res, err := ClusterPrecomputed(dist, n, configWithMinPoints(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertLabelInvariants(t, res, n)
	assertScoresInRange(t, res)
}

// threeClusterData returns 30 points in 3 well-separated groups of 10.
func threeClusterData() [][]float64 {
	data := make([][]float64, 30)
	for i := 0; i < 10; i++ {
		data[i] = []float64{float64(i) * 0.1, 0}
	}
	for i := 10; i < 20; i++ {
		data[i] = []float64{50 + float64(i)*0.1, 0}
	}
	for i := 20; i < 30; i++ {
		data[i] = []float64{100 + float64(i)*0.1, 0}
	}
	return data
}

func TestEdgeCase_ThreeCollinearGroups(t *testing.T) {
	res := mustCluster(t, threeClusterData(), configWithMinPoints(3))

	assertLabelInvariants(t, res, 30)
	if res.NumClusters != 3 {
		t.Fatalf("NumClusters = %d, want 3", res.NumClusters)
	}
	for g := 0; g < 3; g++ {
		for i := 1; i < 10; i++ {
			if res.Labels[g*10+i] != res.Labels[g*10] {
				t.Errorf("group %d split: labels %v", g, res.Labels)
				break
			}
		}
	}
	assertScoresInRange(t, res)
}

func TestEdgeCase_PersistenceAndEpsilon(t *testing.T) {
	cfg := configWithMinPoints(3)
	cfg.ClusterSelectionPersistence = 0.01
	cfg.ClusterSelectionEpsilon = 0.5

	res := mustCluster(t, threeClusterData(), cfg)
	assertLabelInvariants(t, res, 30)
	assertScoresInRange(t, res)
}

func assertScoresInRange(t *testing.T, res *Result) {
	t.Helper()
	for i, p := range res.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Errorf("probability[%d] = %v out of [0, 1]", i, p)
		}
	}
	for i, s := range res.OutlierScores {
		if math.IsNaN(s) || s < 0 || s > 1 {
			t.Errorf("outlier score[%d] = %v out of [0, 1]", i, s)
		}
	}
}
