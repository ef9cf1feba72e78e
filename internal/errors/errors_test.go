package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryErrorMessage(t *testing.T) {
	base := errors.New("connection refused")

	err := NewQueryError(ErrorTypeUnavailable, "pivot_aggregate", base).
		WithNamespace("activity", "processedclaims")
	assert.Equal(t, "pivot_aggregate failed on activity.processedclaims: connection refused", err.Error())

	err = NewQueryError(ErrorTypeUnavailable, "ping", base)
	assert.Equal(t, "ping failed: connection refused", err.Error())
}

func TestQueryErrorIs(t *testing.T) {
	timeout := NewQueryError(ErrorTypeTimeout, "status_find", context.DeadlineExceeded)
	assert.True(t, errors.Is(timeout, ErrStoreTimeout))
	assert.False(t, errors.Is(timeout, ErrStoreUnavailable))

	// wrapped errors still unwrap
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))

	wrapped := fmt.Errorf("engine: %w", timeout)
	assert.True(t, errors.Is(wrapped, ErrStoreTimeout))
	assert.Equal(t, ErrorTypeTimeout, TypeOf(wrapped))
}

func TestWrapStoreError(t *testing.T) {
	require.NoError(t, WrapStoreError("find", "registry", "locations", nil))

	err := WrapStoreError("find", "registry", "locations", context.DeadlineExceeded)
	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, ErrorTypeTimeout, qErr.Type)
	assert.Equal(t, "registry", qErr.Database)
	assert.True(t, IsTimeout(err))

	err = WrapStoreError("find", "registry", "locations", errors.New("no reachable servers"))
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, ErrorTypeUnavailable, qErr.Type)
	assert.True(t, IsUnavailable(err))
}

func TestCancellationPassesThrough(t *testing.T) {
	err := WrapStoreError("aggregate", "activity", "processedclaims", context.Canceled)
	assert.True(t, IsCancellation(err))

	var qErr *QueryError
	assert.False(t, errors.As(err, &qErr))
}

func TestTypeOfDefaultsToUnavailable(t *testing.T) {
	assert.Equal(t, ErrorTypeUnavailable, TypeOf(errors.New("plain")))
}
