package hdbscan

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a validated N×D matrix of finite values. It is immutable once
// constructed: NewDataset copies its input.
type Dataset struct {
	m    *mat.Dense
	n    int
	dims int
}

// NewDataset validates rows and copies them into a Dataset. It rejects an
// empty dataset, zero-width rows, ragged rows and NaN or infinite values with
// a *ValidationError.
func NewDataset(rows [][]float64) (*Dataset, error) {
	n := len(rows)
	if n == 0 {
		return nil, &ValidationError{Field: "dataset", Reason: "dataset is empty"}
	}
	dims := len(rows[0])
	if dims == 0 {
		return nil, &ValidationError{Field: "dataset", Reason: "rows have no columns"}
	}

	flat := make([]float64, n*dims)
	for i, row := range rows {
		if len(row) != dims {
			return nil, validationErrorf("dataset", "row %d has %d columns, want %d", i, len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, validationErrorf("dataset", "row %d column %d is not finite (%v)", i, j, v)
			}
		}
		copy(flat[i*dims:], row)
	}

	return &Dataset{m: mat.NewDense(n, dims, flat), n: n, dims: dims}, nil
}

// NewDatasetFromMatrix validates and copies a gonum matrix.
func NewDatasetFromMatrix(m mat.Matrix) (*Dataset, error) {
	r, c := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = make([]float64, c)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return NewDataset(rows)
}

// Len returns the number of points.
func (d *Dataset) Len() int { return d.n }

// Dims returns the dimensionality of every point.
func (d *Dataset) Dims() int { return d.dims }

// Row returns a read-only view of point i. Callers must not modify it.
func (d *Dataset) Row(i int) []float64 { return d.m.RawRowView(i) }

// Matrix returns a read-only view of the underlying matrix.
func (d *Dataset) Matrix() mat.Matrix { return d.m }

// Rows returns a copy of the data as a slice of rows, in the original order.
func (d *Dataset) Rows() [][]float64 {
	rows := make([][]float64, d.n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, d.m)
	}
	return rows
}

// flat returns the row-major backing data. The slice is shared.
func (d *Dataset) flat() []float64 { return d.m.RawMatrix().Data }

// allIdentical reports whether every point equals the first one, i.e. the
// dataset has fewer than two distinct points.
func (d *Dataset) allIdentical() bool {
	first := d.Row(0)
	for i := 1; i < d.n; i++ {
		row := d.Row(i)
		for j := range row {
			if row[j] != first[j] {
				return false
			}
		}
	}
	return true
}
