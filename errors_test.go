package hdbscan

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	v := validationErrorf("minPoints", "must be in [1, %d], got %d", 9, 0)
	assert.ErrorIs(t, v, ErrValidation)
	assert.EqualError(t, v, "hdbscan: invalid minPoints: must be in [1, 9], got 0")
	assert.EqualError(t, &ValidationError{Reason: "dataset is empty"}, "hdbscan: dataset is empty")

	d := &DegenerateInputError{Points: 4, DistinctPoints: 1, Reason: "all points are identical"}
	assert.ErrorIs(t, d, ErrDegenerateInput)
	assert.Contains(t, d.Error(), "4 points, 1 distinct")

	r := &ResourceExhaustedError{Resource: "points", Limit: "10", Actual: "11"}
	assert.ErrorIs(t, r, ErrResourceExhausted)
	assert.NotErrorIs(t, r, ErrValidation)
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := errors.Wrap(&ResourceExhaustedError{Resource: "time"}, "hdbscan: core distances")
	assert.True(t, IsResourceExhausted(wrapped))
	assert.False(t, IsValidation(wrapped))

	var re *ResourceExhaustedError
	assert.True(t, errors.As(wrapped, &re))
	assert.Equal(t, "time", re.Resource)

	assert.True(t, IsValidation(errors.WithMessage(validationErrorf("x", "bad"), "context")))
	assert.True(t, IsDegenerate(errors.Wrap(&DegenerateInputError{}, "run")))
}

func TestBudgetError(t *testing.T) {
	cfg := DefaultConfig()
	err := errors.Wrap(context.DeadlineExceeded, "hdbscan: minimum spanning tree")
	assert.ErrorIs(t, budgetError(err, cfg), context.DeadlineExceeded)

	cfg.MaxDuration = 1
	assert.True(t, IsResourceExhausted(budgetError(err, cfg)))

	canceled := errors.Wrap(context.Canceled, "hdbscan: core distances")
	assert.ErrorIs(t, budgetError(canceled, cfg), context.Canceled)
}
