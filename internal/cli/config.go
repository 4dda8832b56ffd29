package cli

import (
	"time"

	"github.com/pkg/errors"

	"github.com/roguesystems/hdbscan"
	"github.com/roguesystems/hdbscan/internal/dataset"
)

// Config is the resolved configuration of the cluster command. Values come
// from flags, HDBSCAN_* environment variables and an optional config file,
// in that order of precedence.
type Config struct {
	Input       string `mapstructure:"input"`
	Delimiter   string `mapstructure:"delimiter"`
	Comment     string `mapstructure:"comment"`
	Header      bool   `mapstructure:"header"`
	Constraints string `mapstructure:"constraints"`

	MinPoints          int           `mapstructure:"min-points"`
	MinClusterSize     int           `mapstructure:"min-cluster-size"`
	Metric             string        `mapstructure:"metric"`
	Method             string        `mapstructure:"method"`
	Alpha              float64       `mapstructure:"alpha"`
	Epsilon            float64       `mapstructure:"epsilon"`
	Persistence        float64       `mapstructure:"persistence"`
	MaxClusterSize     int           `mapstructure:"max-cluster-size"`
	AllowSingleCluster bool          `mapstructure:"allow-single-cluster"`
	Index              string        `mapstructure:"index"`
	Workers            int           `mapstructure:"workers"`
	MaxPoints          int           `mapstructure:"max-points"`
	Timeout            time.Duration `mapstructure:"timeout"`

	Precompute  bool   `mapstructure:"precompute"`
	Sweep       string `mapstructure:"sweep"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	Stats       bool   `mapstructure:"stats"`
	MetricsFile string `mapstructure:"metrics-file"`
	LogLevel    string `mapstructure:"log-level"`
}

// clusterConfig maps the CLI configuration onto the library configuration.
func (c *Config) clusterConfig() (hdbscan.Config, error) {
	metric, err := hdbscan.MetricByName(c.Metric)
	if err != nil {
		return hdbscan.Config{}, err
	}
	cfg := hdbscan.DefaultConfig()
	cfg.MinPoints = c.MinPoints
	cfg.MinClusterSize = c.MinClusterSize
	cfg.Metric = metric
	cfg.ClusterSelectionMethod = c.Method
	cfg.Alpha = c.Alpha
	cfg.ClusterSelectionEpsilon = c.Epsilon
	cfg.ClusterSelectionPersistence = c.Persistence
	cfg.MaxClusterSize = c.MaxClusterSize
	cfg.AllowSingleCluster = c.AllowSingleCluster
	cfg.NeighborIndex = hdbscan.NeighborIndex(c.Index)
	cfg.Workers = c.Workers
	cfg.MaxPoints = c.MaxPoints
	cfg.MaxDuration = c.Timeout
	return cfg, nil
}

// loaderOptions converts the delimiter and comment settings. Each must be a
// single character; "\t" and "tab" select a tab delimiter and an empty
// comment disables comments.
func (c *Config) loaderOptions() (dataset.Options, error) {
	opts := dataset.Options{Header: c.Header}

	switch c.Delimiter {
	case "", ",":
		opts.Delimiter = ','
	case `\t`, "tab":
		opts.Delimiter = '\t'
	case "space":
		opts.Delimiter = ' '
	default:
		r := []rune(c.Delimiter)
		if len(r) != 1 {
			return opts, errors.Errorf("delimiter must be a single character, got %q", c.Delimiter)
		}
		opts.Delimiter = r[0]
	}

	if c.Comment != "" {
		r := []rune(c.Comment)
		if len(r) != 1 {
			return opts, errors.Errorf("comment must be a single character, got %q", c.Comment)
		}
		opts.Comment = r[0]
	}
	return opts, nil
}
