// Package retry provides a small, explicitly parameterized retry helper.
// The agent composes two independent policies by nesting calls: a narrow
// tool-level policy inside a coarse node-level policy, each with its own
// attempt budget.
package retry

import (
	"context"
	"errors"
	"time"

	errx "github.com/fraud-detection-agent/server/internal/core/error"
)

// Policy describes one retry budget.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// InitialBackoff is the sleep before the first re-attempt. Zero means
	// retry immediately.
	InitialBackoff time.Duration
	// Multiplier scales the backoff after each failed attempt. Values below
	// 1 are treated as 1 (constant backoff).
	Multiplier float64
}

// Do runs op under the policy. It stops early when the context is cancelled
// or when the error is non-retryable (configuration errors). The error from
// the last attempt is returned.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	backoff := p.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			break
		}

		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			backoff = time.Duration(float64(backoff) * mult)
		}
	}
	return zero, lastErr
}

// retryable reports whether the error is worth another attempt. Context
// cancellation and configuration errors are permanent.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !errors.Is(err, errx.ErrConfiguration)
}
