// Package dataset reads point sets and pairwise constraints from delimited
// text files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/roguesystems/hdbscan"
)

// Options controls how delimited text is parsed.
type Options struct {
	// Delimiter separates fields. Default ','.
	Delimiter rune
	// Comment starts a line that is skipped. 0 disables comments. Default '#'.
	Comment rune
	// Header skips the first non-comment record.
	Header bool
}

// DefaultOptions returns comma-separated options with '#' comments.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Comment: '#'}
}

// Diagnostic records a field that could not be parsed as a number. The field
// is loaded as 0.
type Diagnostic struct {
	Line  int
	Field int
	Value string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d field %d: %q is not a number, using 0", d.Line, d.Field, d.Value)
}

// Load parses one point per record. Blank lines and comment lines are
// skipped; every record must have the same number of fields. Malformed
// numbers become 0 and are reported as diagnostics and logged at warn level.
func Load(r io.Reader, opts Options, logger *slog.Logger) ([][]float64, []Diagnostic, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cr := newReader(r, opts)

	var (
		rows  [][]float64
		diags []Diagnostic
	)
	skipHeader := opts.Header
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "dataset: read")
		}
		if skipHeader {
			skipHeader = false
			continue
		}

		line, _ := cr.FieldPos(0)
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				d := Diagnostic{Line: line, Field: j + 1, Value: field}
				diags = append(diags, d)
				logger.Warn("dataset: malformed field",
					slog.Int("line", d.Line),
					slog.Int("field", d.Field),
					slog.String("value", d.Value))
				v = 0
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, diags, errors.New("dataset: no records")
	}
	return rows, diags, nil
}

// LoadFile is Load on the named file.
func LoadFile(path string, opts Options, logger *slog.Logger) ([][]float64, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dataset: open")
	}
	defer f.Close()
	return Load(f, opts, logger)
}

// LoadConstraints parses records of the form "a,b,type" where a and b are
// zero-based point indices and type is "ml" (must-link) or "cl"
// (cannot-link). Index range is checked when clustering.
func LoadConstraints(r io.Reader, opts Options) ([]hdbscan.Constraint, error) {
	cr := newReader(r, opts)
	cr.FieldsPerRecord = 3

	var cons []hdbscan.Constraint
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return cons, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "constraints: read")
		}
		line, _ := cr.FieldPos(0)

		a, errA := strconv.Atoi(strings.TrimSpace(rec[0]))
		b, errB := strconv.Atoi(strings.TrimSpace(rec[1]))
		if errA != nil || errB != nil {
			return nil, errors.Errorf("constraints: line %d: point indices must be integers, got %q and %q", line, rec[0], rec[1])
		}
		typ, err := hdbscan.ParseConstraintType(rec[2])
		if err != nil {
			return nil, errors.Wrapf(err, "constraints: line %d", line)
		}
		cons = append(cons, hdbscan.Constraint{A: a, B: b, Type: typ})
	}
}

// LoadConstraintsFile is LoadConstraints on the named file.
func LoadConstraintsFile(path string, opts Options) ([]hdbscan.Constraint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "constraints: open")
	}
	defer f.Close()
	return LoadConstraints(f, opts)
}

func newReader(r io.Reader, opts Options) *csv.Reader {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.Comment = opts.Comment
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}
