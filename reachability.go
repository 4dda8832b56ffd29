package hdbscan

// WeightedGraph is an implicit complete graph over Len() nodes.
type WeightedGraph interface {
	Len() int
	Weight(i, j int) float64
}

// MutualReachability is the mutual reachability graph of a dataset:
//
//	Weight(i, j) = max(core[i], core[j], dist(i, j)/alpha)
//
// Weights are computed on demand; no n×n matrix is stored.
type MutualReachability struct {
	ds     *Dataset
	core   []float64
	metric DistanceMetric
	alpha  float64
}

// NewMutualReachability returns the implicit mutual reachability graph.
// core must have one entry per point of ds. alpha <= 0 is treated as 1.
func NewMutualReachability(ds *Dataset, core []float64, metric DistanceMetric, alpha float64) *MutualReachability {
	if alpha <= 0 {
		alpha = 1
	}
	return &MutualReachability{ds: ds, core: core, metric: metric, alpha: alpha}
}

func (g *MutualReachability) Len() int { return g.ds.Len() }

func (g *MutualReachability) Weight(i, j int) float64 {
	d := g.metric.Distance(g.ds.Row(i), g.ds.Row(j))
	if g.alpha != 1.0 {
		d /= g.alpha
	}
	return max(d, g.core[i], g.core[j])
}

// precomputedReachability is the mutual reachability graph over a flat n*n
// distance matrix.
type precomputedReachability struct {
	dist  []float64
	core  []float64
	n     int
	alpha float64
}

func (g *precomputedReachability) Len() int { return g.n }

func (g *precomputedReachability) Weight(i, j int) float64 {
	d := g.dist[i*g.n+j]
	if g.alpha != 1.0 {
		d /= g.alpha
	}
	return max(d, g.core[i], g.core[j])
}
