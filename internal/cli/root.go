// Package cli implements the hdbscan command line.
package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roguesystems/hdbscan"
)

// EnvPrefix prefixes the environment variables read by the commands.
// Flag "min-points" maps to HDBSCAN_MIN_POINTS.
const EnvPrefix = "HDBSCAN"

// NewRootCommand returns the hdbscan command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hdbscan",
		Short:         "Density-based hierarchical clustering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClusterCommand())
	return root
}

func newClusterCommand() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "cluster [file]",
		Short: "Cluster the points of a delimited text file",
		Long: `Cluster reads one point per line from a delimited text file and prints
the clusters, noise points, membership probabilities and outlier scores.

Every flag can also be set through an HDBSCAN_* environment variable
(--min-points is HDBSCAN_MIN_POINTS) or a key in the --config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, configFile, args)
			if err != nil {
				return err
			}
			return runCluster(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	def := hdbscan.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")

	f.String("input", "", "input file; the positional argument takes precedence")
	f.String("delimiter", ",", `field delimiter: a single character, "tab" or "space"`)
	f.String("comment", "#", "comment character; empty disables comments")
	f.Bool("header", false, "skip the first record")
	f.String("constraints", "", "constraint file with a,b,ml|cl records")

	f.IntP("min-points", "m", def.MinPoints, "neighbor rank used for core distances")
	f.Int("min-cluster-size", 0, "smallest cluster size; 0 means max(min-points, 2)")
	f.String("metric", "euclidean", "euclidean, manhattan, chebyshev, cosine, pearson or minkowski:<p>")
	f.String("method", def.ClusterSelectionMethod, "cluster selection method: eom or leaf")
	f.Float64("alpha", def.Alpha, "distance scaling for mutual reachability")
	f.Float64("epsilon", 0, "cluster selection epsilon")
	f.Float64("persistence", 0, "minimum persistence of leaf clusters")
	f.Int("max-cluster-size", 0, "largest selectable cluster; 0 means unlimited")
	f.Bool("allow-single-cluster", false, "allow the whole dataset to be one cluster")
	f.String("index", string(def.NeighborIndex), "core distance index: auto, brute or kdtree")
	f.Int("workers", 0, "worker goroutines; 0 means one per CPU")
	f.Int("max-points", hdbscan.DefaultMaxPoints, "largest accepted dataset; negative disables the check")
	f.Duration("timeout", 0, "abort a run after this long; 0 disables the limit")

	f.Bool("precompute", false, "compute the full distance matrix up front (n² memory)")
	f.String("sweep", "", "choose min-points from a range lo:hi by clustering validity")
	f.StringP("format", "f", "text", "output format: text, json or yaml")
	f.StringP("output", "o", "", "write the report to this file instead of stdout")
	f.Bool("stats", false, "include per-cluster distances and clustering statistics")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	f.String("log-level", "info", "debug, info, warn or error")

	// BindPFlags only fails on a nil flag set.
	_ = v.BindPFlags(f)
	return cmd
}

// loadConfig resolves flags, environment and the optional config file.
func loadConfig(v *viper.Viper, configFile string, args []string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}
	if cfg.Input == "" {
		return nil, errors.New("no input file: pass a path or set --input")
	}
	return &cfg, nil
}
