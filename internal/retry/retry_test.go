package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("busy")

func TestIncremental(t *testing.T) {
	t.Parallel()

	t.Run("single successful try", func(t *testing.T) {
		t.Parallel()

		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 5, func(_ int) error {
			runs++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, runs)
	})

	t.Run("success from the third time", func(t *testing.T) {
		t.Parallel()

		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			if attempt < 3 {
				return Error(errBusy, attempt)
			}

			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, runs)
	})

	t.Run("fails when attempt limit is exhausted", func(t *testing.T) {
		t.Parallel()

		runs := 0

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(attempt int) error {
			runs++
			return Error(errBusy, attempt)
		})

		require.ErrorIs(t, err, ErrTooManyAttempts)
		require.ErrorIs(t, err, errBusy)
		assert.Equal(t, 4, runs)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		t.Parallel()

		runs := 0
		errFatal := errors.New("fatal")

		err := Incremental(context.Background(), 2*time.Millisecond, 4, func(_ int) error {
			runs++
			return errFatal
		})

		require.ErrorIs(t, err, errFatal)
		assert.NotErrorIs(t, err, ErrTooManyAttempts)
		assert.Equal(t, 1, runs)
	})
}

func TestStart_contextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runs := 0

	err := Incremental(ctx, time.Hour, 3, func(attempt int) error {
		runs++
		cancel()

		return Error(errBusy, attempt)
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runs)
}

func TestError_nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Error(nil, 1))
}

func TestIncrementalAttempts_pauses(t *testing.T) {
	t.Parallel()

	a := IncrementalAttempts(10*time.Millisecond, 3)

	var pauses []time.Duration

	for {
		p, stop := a.Next()
		if stop {
			break
		}

		pauses = append(pauses, p)
	}

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, pauses)
}

func TestBudgetAttempts_pauses(t *testing.T) {
	t.Parallel()

	a := BudgetAttempts(10*time.Millisecond, 65*time.Millisecond)

	var pauses []time.Duration

	for {
		p, stop := a.Next()
		if stop {
			break
		}

		pauses = append(pauses, p)
	}

	// 10 + 20 + 30 = 60; a fourth pause of 40 would exceed the budget.
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond}, pauses)
	assert.Equal(t, 5, a.Current())
}

func TestWithin_zeroBudget_singleAttempt(t *testing.T) {
	t.Parallel()

	runs := 0

	err := Within(context.Background(), time.Millisecond, 0, func(attempt int) error {
		runs++
		return Error(errBusy, attempt)
	})

	require.ErrorIs(t, err, ErrTooManyAttempts)
	assert.Equal(t, 1, runs)
}
