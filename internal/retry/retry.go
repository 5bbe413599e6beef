// Package retry re-runs a callable with growing pauses until it succeeds,
// gives up, or the context ends.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTooManyAttempts indicates the attempt budget ran out.
var ErrTooManyAttempts = errors.New("too many retry attempts")

// Callable is invoked once per attempt, starting at attempt 1.
type Callable func(attempt int) error

type retryError struct {
	err     error
	attempt int
}

func (e *retryError) Error() string { return e.err.Error() }

func (e *retryError) Unwrap() error { return e.err }

// Error marks err as retryable. Any other non-nil error returned from a
// Callable stops the loop immediately.
func Error(err error, attempt int) error {
	if err == nil {
		return nil
	}

	return &retryError{err: err, attempt: attempt}
}

// Attempts yields the pause before each subsequent attempt.
type Attempts interface {
	// Next advances to the next attempt. stop is true once the budget is spent.
	Next() (pause time.Duration, stop bool)
	Current() int
}

// Start runs cb until it returns nil or a non-retryable error, the
// attempts are exhausted, or ctx is done.
func Start(ctx context.Context, a Attempts, cb Callable) error {
	for {
		err := cb(a.Current())
		if err == nil {
			return nil
		}

		var re *retryError
		if !errors.As(err, &re) {
			return fmt.Errorf("attempt %d failed: %w", a.Current(), err)
		}

		next, stop := a.Next()
		if stop {
			return fmt.Errorf("%w: %w", ErrTooManyAttempts, re.err)
		}

		timer := time.NewTimer(next)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Incremental retries cb up to maxRetries times, pausing step longer
// before each attempt than before the previous one.
func Incremental(ctx context.Context, step time.Duration, maxRetries int, cb Callable) error {
	return Start(ctx, IncrementalAttempts(step, maxRetries), cb)
}

// Within retries cb with incremental pauses for as long as the pauses add up
// to no more than budget. A zero budget means a single attempt.
func Within(ctx context.Context, step, budget time.Duration, cb Callable) error {
	return Start(ctx, BudgetAttempts(step, budget), cb)
}

type incrementalAttempts struct {
	prev time.Duration
	step time.Duration
	max  int
	curr int
}

func (a *incrementalAttempts) Next() (time.Duration, bool) {
	a.curr++
	if a.curr > a.max {
		return 0, true
	}

	a.prev += a.step

	return a.prev, false
}

func (a *incrementalAttempts) Current() int { return a.curr }

// IncrementalAttempts allows max attempts with pauses of step, 2*step, 3*step...
func IncrementalAttempts(step time.Duration, maxAttempts int) Attempts {
	return &incrementalAttempts{step: step, max: maxAttempts, curr: 1}
}

type budgetAttempts struct {
	incrementalAttempts
	budget time.Duration
	spent  time.Duration
}

func (a *budgetAttempts) Next() (time.Duration, bool) {
	a.curr++

	next := a.prev + a.step
	if a.step <= 0 || a.spent+next > a.budget {
		return 0, true
	}

	a.prev = next
	a.spent += next

	return next, false
}

// BudgetAttempts is IncrementalAttempts bounded by total pause time rather
// than attempt count.
func BudgetAttempts(step, budget time.Duration) Attempts {
	return &budgetAttempts{
		incrementalAttempts: incrementalAttempts{step: step, curr: 1},
		budget:              budget,
	}
}
