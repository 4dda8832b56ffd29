// Package report renders a clustering as text, JSON or YAML.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/roguesystems/hdbscan"
)

// Format is an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "text", "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.Errorf("report: unknown format %q", s)
}

// Cluster describes one cluster. Distance fields are set only when the
// report includes statistics.
type Cluster struct {
	Label   int   `json:"label" yaml:"label"`
	Size    int   `json:"size" yaml:"size"`
	Members []int `json:"members" yaml:"members,flow"`

	Distances *hdbscan.ClusterDistances `json:"distances,omitempty" yaml:"distances,omitempty"`
}

// Report is the serializable outcome of a clustering run.
type Report struct {
	Points      int `json:"points" yaml:"points"`
	MinPoints   int `json:"min_points" yaml:"min_points"`
	NumClusters int `json:"num_clusters" yaml:"num_clusters"`

	// Clusters are ordered by decreasing size.
	Clusters []Cluster `json:"clusters" yaml:"clusters"`
	Noise    []int     `json:"noise" yaml:"noise,flow"`

	Labels        []int     `json:"labels" yaml:"labels,flow"`
	Probabilities []float64 `json:"probabilities,omitempty" yaml:"probabilities,omitempty,flow"`
	OutlierScores []float64 `json:"outlier_scores,omitempty" yaml:"outlier_scores,omitempty,flow"`

	Stats    *hdbscan.ClusteringStats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Validity *int                     `json:"validity,omitempty" yaml:"validity,omitempty"`
}

// FromClusterer builds a report from the committed result of c. With
// withStats it also computes per-cluster distances and clustering stats.
func FromClusterer(ctx context.Context, c *hdbscan.Clusterer, withStats bool) (*Report, error) {
	labels, err := c.Labels()
	if err != nil {
		return nil, err
	}
	cm, err := c.ClusterMap()
	if err != nil {
		return nil, err
	}
	probs, err := c.Probabilities()
	if err != nil {
		return nil, err
	}
	scores, err := c.OutlierScores()
	if err != nil {
		return nil, err
	}

	r := &Report{
		Points:        len(labels),
		MinPoints:     c.MinPoints(),
		NumClusters:   cm.Len(),
		Noise:         cm.Noise,
		Labels:        labels,
		Probabilities: probs,
		OutlierScores: scores,
	}
	var dists []hdbscan.ClusterDistances
	if withStats {
		dists, err = c.Distances(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "report: cluster distances")
		}
	}
	r.finish(cm, dists)
	return r, nil
}

// FromResult builds a report from a one-shot clustering. dists, when not nil,
// holds the per-cluster distances from hdbscan.MinMaxDistances and adds
// statistics to the report.
func FromResult(res *hdbscan.Result, minPoints int, dists []hdbscan.ClusterDistances) *Report {
	cm := hdbscan.NewClusterMap(res.Labels, res.NumClusters)
	r := &Report{
		Points:        len(res.Labels),
		MinPoints:     minPoints,
		NumClusters:   cm.Len(),
		Noise:         cm.Noise,
		Labels:        res.Labels,
		Probabilities: res.Probabilities,
		OutlierScores: res.OutlierScores,
	}
	r.finish(cm, dists)
	return r
}

// finish fills in the cluster list and, with dists, the statistics.
func (r *Report) finish(cm *hdbscan.ClusterMap, dists []hdbscan.ClusterDistances) {
	if r.Noise == nil {
		r.Noise = []int{}
	}
	if dists != nil {
		stats := hdbscan.CalculateStats(dists)
		validity := stats.Validity()
		r.Stats, r.Validity = &stats, &validity
	}
	for _, label := range cm.SortByLength() {
		members := cm.Members(label)
		cl := Cluster{Label: label, Size: len(members), Members: members}
		if dists != nil {
			cl.Distances = &dists[label]
		}
		r.Clusters = append(r.Clusters, cl)
	}
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(r), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return errors.Wrap(err, "report: encode yaml")
		}
		return errors.Wrap(enc.Close(), "report: encode yaml")
	case FormatText, "":
		return writeText(w, r)
	}
	return errors.Errorf("report: unknown format %q", f)
}

func writeText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "points:\t%d\n", r.Points)
	fmt.Fprintf(tw, "min points:\t%d\n", r.MinPoints)
	fmt.Fprintf(tw, "clusters:\t%d\n", r.NumClusters)
	fmt.Fprintf(tw, "noise:\t%d\n", len(r.Noise))
	if r.Validity != nil {
		fmt.Fprintf(tw, "validity:\t%d\n", *r.Validity)
	}
	fmt.Fprintln(tw)

	for _, cl := range r.Clusters {
		fmt.Fprintf(tw, "cluster %d\t%d points\t%s\n", cl.Label, cl.Size, joinInts(cl.Members))
		if d := cl.Distances; d != nil {
			fmt.Fprintf(tw, "\tcore [%.4g, %.4g]\tconfidence %.2f%%\n", d.MinCore, d.MaxCore, d.CoreConfidence)
			fmt.Fprintf(tw, "\tintra [%.4g, %.4g]\tconfidence %.2f%%\n", d.MinIntra, d.MaxIntra, d.IntraConfidence)
		}
	}
	if len(r.Noise) > 0 {
		fmt.Fprintf(tw, "noise\t%d points\t%s\n", len(r.Noise), joinInts(r.Noise))
	}

	if s := r.Stats; s != nil {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "confidence\tmean\tstddev\tvariance\tmax\tkurtosis\tskewness")
		for _, row := range []struct {
			name string
			v    hdbscan.StatsValues
		}{{"core", s.CoreDistance}, {"intra", s.IntraDistance}} {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
				row.name, row.v.Mean, row.v.StdDev, row.v.Variance, row.v.Max, row.v.Kurtosis, row.v.Skewness)
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "point\tlabel\tprobability\toutlier score")
	for p, l := range r.Labels {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", p, l, optFloat(r.Probabilities, p), optFloat(r.OutlierScores, p))
	}
	return errors.Wrap(tw.Flush(), "report: write text")
}

func optFloat(v []float64, i int) string {
	if i >= len(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v[i])
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
