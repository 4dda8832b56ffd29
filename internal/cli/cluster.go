package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roguesystems/hdbscan"
	"github.com/roguesystems/hdbscan/internal/dataset"
	"github.com/roguesystems/hdbscan/internal/report"
)

func runCluster(ctx context.Context, cfg *Config, stdout, stderr io.Writer) error {
	logger, err := newLogger(stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	clusterCfg, err := cfg.clusterConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.loaderOptions()
	if err != nil {
		return err
	}

	rows, diags, err := dataset.LoadFile(cfg.Input, opts, logger)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		logger.Warn("input contained malformed fields", slog.Int("count", len(diags)))
	}
	if cfg.Constraints != "" {
		clusterCfg.Constraints, err = dataset.LoadConstraintsFile(cfg.Constraints, opts)
		if err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	var r *report.Report
	if cfg.Precompute {
		if cfg.Sweep != "" {
			return errors.New("--sweep cannot be combined with --precompute")
		}
		r, err = clusterPrecomputed(ctx, clusterCfg, rows, cfg.Stats)
	} else {
		r, err = clusterRows(ctx, clusterCfg, cfg, rows, reg, logger)
	}
	if err != nil {
		return err
	}

	out := stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, r, format); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}

// clusterRows runs a Clusterer over rows, optionally sweeping minPoints.
func clusterRows(ctx context.Context, clusterCfg hdbscan.Config, cfg *Config, rows [][]float64, reg prometheus.Registerer, logger *slog.Logger) (*report.Report, error) {
	metrics, err := hdbscan.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	c, err := hdbscan.New(clusterCfg.MinPoints,
		hdbscan.WithConfig(clusterCfg),
		hdbscan.WithLogger(logger),
		hdbscan.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}
	if err := c.Run(ctx, rows); err != nil {
		return nil, err
	}

	if cfg.Sweep != "" {
		lo, hi, err := parseSweep(cfg.Sweep)
		if err != nil {
			return nil, err
		}
		sel, err := hdbscan.SelectMinPoints(ctx, c, lo, hi)
		if err != nil {
			return nil, err
		}
		logger.Info("min points selected",
			slog.Int("min_points", sel.Best),
			slog.Int("validity", sel.Validity[sel.Best]),
			slog.Int("clusters", sel.NumClusters[sel.Best]))
	}

	return report.FromClusterer(ctx, c, cfg.Stats)
}

// clusterPrecomputed computes the full distance matrix up front and clusters
// it. The matrix needs n² floats, so the point budget is checked first.
func clusterPrecomputed(ctx context.Context, clusterCfg hdbscan.Config, rows [][]float64, withStats bool) (*report.Report, error) {
	ds, err := hdbscan.NewDataset(rows)
	if err != nil {
		return nil, err
	}
	limit := clusterCfg.MaxPoints
	if limit == 0 {
		limit = hdbscan.DefaultMaxPoints
	}
	if limit > 0 && ds.Len() > limit {
		return nil, &hdbscan.ResourceExhaustedError{
			Resource: "points",
			Limit:    strconv.Itoa(limit),
			Actual:   strconv.Itoa(ds.Len()),
		}
	}

	dist, err := hdbscan.PairwiseDistances(ctx, ds, clusterCfg.Metric, clusterCfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "pairwise distances")
	}
	res, err := hdbscan.ClusterPrecomputedContext(ctx, dist, ds.Len(), clusterCfg)
	if err != nil {
		return nil, err
	}

	var dists []hdbscan.ClusterDistances
	if withStats {
		cm := hdbscan.NewClusterMap(res.Labels, res.NumClusters)
		dists, err = hdbscan.MinMaxDistances(ctx, ds, clusterCfg.Metric, res.CoreDistances, cm)
		if err != nil {
			return nil, err
		}
	}
	return report.FromResult(res, clusterCfg.MinPoints, dists), nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errors.Wrapf(err, "log level %q", level)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// parseSweep parses an inclusive "lo:hi" range.
func parseSweep(s string) (lo, hi int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.Errorf("sweep %q: want lo:hi", s)
	}
	lo, errLo := strconv.Atoi(strings.TrimSpace(a))
	hi, errHi := strconv.Atoi(strings.TrimSpace(b))
	if errLo != nil || errHi != nil {
		return 0, 0, errors.Errorf("sweep %q: bounds must be integers", s)
	}
	return lo, hi, nil
}
