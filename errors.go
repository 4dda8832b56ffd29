package hdbscan

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Every typed error below matches its sentinel with errors.Is.
var (
	ErrValidation        = errors.New("hdbscan: validation failed")
	ErrDegenerateInput   = errors.New("hdbscan: degenerate input")
	ErrResourceExhausted = errors.New("hdbscan: resource budget exceeded")

	// ErrNotAvailable is returned by accessors when no run has succeeded yet.
	ErrNotAvailable = errors.New("hdbscan: no clustering result available")

	// ErrNoDataset is returned by ReRun before any dataset has been accepted.
	ErrNoDataset = errors.New("hdbscan: no dataset to re-run on")
)

// ValidationError reports input rejected before any computation started.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "hdbscan: " + e.Reason
	}
	return fmt.Sprintf("hdbscan: invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for any *ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DegenerateInputError describes input the hierarchy cannot split, such as a
// dataset whose points are all identical.
type DegenerateInputError struct {
	Points         int
	DistinctPoints int
	Reason         string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("hdbscan: degenerate input (%d points, %d distinct): %s",
		e.Points, e.DistinctPoints, e.Reason)
}

func (e *DegenerateInputError) Is(target error) bool { return target == ErrDegenerateInput }

// ResourceExhaustedError reports a dataset that exceeds the configured budget.
// Resource is "points" or "time".
type ResourceExhaustedError struct {
	Resource string
	Limit    string
	Actual   string
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("hdbscan: %s budget exceeded: limit %s, got %s", e.Resource, e.Limit, e.Actual)
}

func (e *ResourceExhaustedError) Is(target error) bool { return target == ErrResourceExhausted }

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsDegenerate reports whether err describes degenerate input.
func IsDegenerate(err error) bool { return errors.Is(err, ErrDegenerateInput) }

// IsResourceExhausted reports whether err was caused by the resource budget.
func IsResourceExhausted(err error) bool { return errors.Is(err, ErrResourceExhausted) }

// ErrNotInitialized is returned by a zero-value Clusterer that was not built
// with New.
var ErrNotInitialized = errors.New("hdbscan: clusterer not initialized")
