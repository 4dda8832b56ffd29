package hdbscan

import (
	"context"

	"github.com/pkg/errors"
)

// MinPointsSelection is the outcome of a minPoints sweep.
type MinPointsSelection struct {
	Best        int
	Validity    map[int]int
	NumClusters map[int]int
}

// SelectMinPoints clusters the dataset of c for every minPoints in [lo, hi],
// scores each clustering with ClusteringStats.Validity and commits the best
// one to c. Ties go to the smaller minPoints. c must already hold a dataset.
//
// Trial clusterings are never committed: if any step fails or ctx is
// cancelled, c keeps the labels and minPoints it had before the sweep.
func SelectMinPoints(ctx context.Context, c *Clusterer, lo, hi int) (*MinPointsSelection, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	cfg, ds, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNoDataset
	}
	if lo < 1 || hi < lo || hi > ds.Len()-1 {
		return nil, validationErrorf("minPoints", "sweep range [%d, %d] must lie in [1, %d]", lo, hi, ds.Len()-1)
	}

	sel := &MinPointsSelection{
		Best:        lo,
		Validity:    make(map[int]int, hi-lo+1),
		NumClusters: make(map[int]int, hi-lo+1),
	}
	var (
		best      *Result
		bestCfg   Config
		bestScore int
	)
	for k := lo; k <= hi; k++ {
		trial := cfg
		trial.MinPoints = k
		res, err := c.evaluate(ctx, "sweep", ds, trial)
		if err != nil {
			return nil, errors.Wrapf(err, "hdbscan: sweep at minPoints=%d", k)
		}
		dists, err := MinMaxDistances(ctx, ds, trial.Metric, res.CoreDistances, NewClusterMap(res.Labels, res.NumClusters))
		if err != nil {
			return nil, errors.Wrapf(err, "hdbscan: sweep stats at minPoints=%d", k)
		}
		stats := CalculateStats(dists)

		score := stats.Validity()
		sel.Validity[k] = score
		sel.NumClusters[k] = stats.Count
		if best == nil || score > bestScore {
			sel.Best, bestScore = k, score
			best, bestCfg = res, trial
		}
	}

	c.commit(ds, bestCfg, best)
	return sel, nil
}
