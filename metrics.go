package hdbscan

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for clustering runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs     *prometheus.CounterVec   // runs by operation and outcome
	duration *prometheus.HistogramVec // run duration by operation
	points   prometheus.Gauge         // points in the last committed run
	clusters prometheus.Gauge         // clusters in the last committed run
	noise    prometheus.Gauge         // noise points in the last committed run
}

// NewMetrics creates the clustering collectors and registers them with reg.
// A nil registerer disables metrics and returns (nil, nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hdbscan",
			Name:      "runs_total",
			Help:      "Total clustering runs by operation and outcome",
		}, []string{"operation", "outcome"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hdbscan",
			Name:      "run_duration_seconds",
			Help:      "Duration of clustering runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"operation"}),

		points: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hdbscan",
			Name:      "points",
			Help:      "Number of points in the last committed clustering",
		}),

		clusters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hdbscan",
			Name:      "clusters",
			Help:      "Number of clusters in the last committed clustering",
		}),

		noise: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hdbscan",
			Name:      "noise_points",
			Help:      "Number of noise points in the last committed clustering",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.points, m.clusters, m.noise} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "hdbscan: register metrics")
		}
	}
	return m, nil
}

// outcome classifies a run error for the runs_total counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsValidation(err):
		return "validation_error"
	case IsResourceExhausted(err):
		return "resource_exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func (m *Metrics) observeRun(operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(operation, outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) observeResult(res *Result) {
	if m == nil || res == nil {
		return
	}
	noise := 0
	for _, l := range res.Labels {
		if l == Noise {
			noise++
		}
	}
	m.points.Set(float64(len(res.Labels)))
	m.clusters.Set(float64(res.NumClusters))
	m.noise.Set(float64(noise))
}
