package hdbscan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a Clusterer.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateLabeled
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateLabeled:
		return "labeled"
	default:
		return "uninitialized"
	}
}

// Clusterer owns a dataset and its most recent successful clustering. Runs
// are serialized; accessors may be called concurrently with a run and always
// observe either the previous or the new result, never a mix.
//
// A failed or cancelled run leaves the committed result untouched.
type Clusterer struct {
	runMu sync.Mutex // serializes Run and ReRun

	mu      sync.RWMutex
	state   State
	cfg     Config
	data    *Dataset
	result  *Result
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Clusterer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors created by NewMetrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Clusterer) { c.metrics = m }
}

// WithConfig replaces the base configuration. MinPoints is always taken from
// the argument to New.
func WithConfig(cfg Config) Option {
	return func(c *Clusterer) { c.cfg = cfg }
}

// New returns a Clusterer in the Initialized state. minPoints must be >= 1;
// its upper bound is checked against the dataset on each run.
func New(minPoints int, opts ...Option) (*Clusterer, error) {
	c := &Clusterer{
		cfg:    DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg.MinPoints = minPoints
	applyDefaults(&c.cfg)
	if err := validateConfig(&c.cfg); err != nil {
		return nil, err
	}
	c.state = StateInitialized
	return c, nil
}

// Run validates rows and clusters them, replacing any previous dataset and
// result on success.
func (c *Clusterer) Run(ctx context.Context, rows [][]float64) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	cfg, _, err := c.snapshot()
	if err != nil {
		return err
	}
	ds, err := NewDataset(rows)
	if err != nil {
		c.metrics.observeRun("run", 0, err)
		return err
	}
	return c.execute(ctx, "run", ds, cfg)
}

// ReRun clusters the already accepted dataset again with a new minPoints.
// It returns ErrNoDataset if Run has never succeeded.
func (c *Clusterer) ReRun(ctx context.Context, minPoints int) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	cfg, ds, err := c.snapshot()
	if err != nil {
		return err
	}
	if ds == nil {
		return ErrNoDataset
	}
	cfg.MinPoints = minPoints
	if err := validateConfig(&cfg); err != nil {
		c.metrics.observeRun("rerun", 0, err)
		return err
	}
	return c.execute(ctx, "rerun", ds, cfg)
}

func (c *Clusterer) snapshot() (Config, *Dataset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state == StateUninitialized {
		return Config{}, nil, ErrNotInitialized
	}
	cfg := c.cfg
	cfg.Constraints = append([]Constraint(nil), c.cfg.Constraints...)
	return cfg, c.data, nil
}

// execute runs the pipeline and commits the outcome only on success.
func (c *Clusterer) execute(ctx context.Context, op string, ds *Dataset, cfg Config) error {
	res, err := c.evaluate(ctx, op, ds, cfg)
	if err != nil {
		return err
	}
	c.commit(ds, cfg, res)
	return nil
}

// evaluate runs the pipeline without touching the committed state. Callers
// hold runMu.
func (c *Clusterer) evaluate(ctx context.Context, op string, ds *Dataset, cfg Config) (*Result, error) {
	runID := uuid.New()
	logger := c.logger.With(
		slog.String("run_id", runID.String()),
		slog.String("op", op),
		slog.Int("points", ds.Len()),
		slog.Int("min_points", cfg.MinPoints),
	)

	start := time.Now()
	res, err := runPipeline(ctx, ds, cfg, logger)
	elapsed := time.Since(start)
	c.metrics.observeRun(op, elapsed, err)
	if err != nil {
		logger.Warn("hdbscan: run failed", slog.Any("error", err), slog.Duration("duration", elapsed))
		return nil, err
	}

	// Trees are run-scoped intermediates; only per-point outputs are kept.
	res.CondensedTree = nil
	res.SingleLinkageTree = nil

	logger.Info("hdbscan: run complete",
		slog.Int("clusters", res.NumClusters),
		slog.Int("noise", countNoise(res.Labels)),
		slog.Duration("duration", elapsed),
	)
	return res, nil
}

// commit swaps in a successful result.
func (c *Clusterer) commit(ds *Dataset, cfg Config, res *Result) {
	c.mu.Lock()
	c.cfg = cfg
	c.data = ds
	c.result = res
	c.state = StateLabeled
	c.mu.Unlock()

	c.metrics.observeResult(res)
}

func countNoise(labels []int) int {
	n := 0
	for _, l := range labels {
		if l == Noise {
			n++
		}
	}
	return n
}

// State returns the lifecycle state.
func (c *Clusterer) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// MinPoints returns the minPoints of the committed configuration.
func (c *Clusterer) MinPoints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.MinPoints
}

// Dataset returns the accepted dataset, or nil before the first successful run.
func (c *Clusterer) Dataset() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

func (c *Clusterer) committed() (*Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return nil, ErrNotAvailable
	}
	return c.result, nil
}

// Labels returns a copy of the per-point labels.
func (c *Clusterer) Labels() ([]int, error) {
	res, err := c.committed()
	if err != nil {
		return nil, err
	}
	return append([]int(nil), res.Labels...), nil
}

// Probabilities returns a copy of the membership probabilities. It is nil
// when probabilities are disabled.
func (c *Clusterer) Probabilities() ([]float64, error) {
	res, err := c.committed()
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), res.Probabilities...), nil
}

// OutlierScores returns a copy of the GLOSH scores. It is nil when scores are
// disabled.
func (c *Clusterer) OutlierScores() ([]float64, error) {
	res, err := c.committed()
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), res.OutlierScores...), nil
}

// NumClusters returns the number of clusters in the committed result.
func (c *Clusterer) NumClusters() (int, error) {
	res, err := c.committed()
	if err != nil {
		return 0, err
	}
	return res.NumClusters, nil
}

// ClusterMap groups the committed labels by cluster.
func (c *Clusterer) ClusterMap() (*ClusterMap, error) {
	res, err := c.committed()
	if err != nil {
		return nil, err
	}
	return NewClusterMap(res.Labels, res.NumClusters), nil
}

// Distances returns the per-cluster core and intra-cluster distance extremes
// of the committed result.
func (c *Clusterer) Distances(ctx context.Context) ([]ClusterDistances, error) {
	c.mu.RLock()
	res, ds, cfg := c.result, c.data, c.cfg
	c.mu.RUnlock()
	if res == nil {
		return nil, ErrNotAvailable
	}
	return MinMaxDistances(ctx, ds, cfg.Metric, res.CoreDistances, NewClusterMap(res.Labels, res.NumClusters))
}

// Stats summarizes the committed clustering. See ClusteringStats.Validity.
func (c *Clusterer) Stats(ctx context.Context) (ClusteringStats, error) {
	dists, err := c.Distances(ctx)
	if err != nil {
		return ClusteringStats{}, err
	}
	return CalculateStats(dists), nil
}
