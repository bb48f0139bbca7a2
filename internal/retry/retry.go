// Package retry implements the backoff policy for the inference call:
// pure exponential backoff on rate limits, immediate failure for
// everything else.
package retry

import (
	"context"
	"fmt"
	"time"

	"jobfit/internal/analysis"
)

// OnRetry is invoked before each backoff wait with a human-readable status
// and the 1-based index of the attempt that just failed.
type OnRetry func(message string, attempt int)

// Do runs op up to maxAttempts times. Rate-limited failures wait
// baseDelay × 2^(attempt-1) between attempts; daily-quota and all other
// failures are terminal immediately. Total blocking time is bounded by
// baseDelay × (2^maxAttempts − 1).
func Do[T any](ctx context.Context, maxAttempts int, baseDelay time.Duration, onRetry OnRetry, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}

		switch analysis.Classify(err) {
		case analysis.ClassDailyQuota:
			// Retrying a daily ceiling is pointless.
			return zero, err
		case analysis.ClassRateLimited:
			if attempt >= maxAttempts {
				return zero, err
			}
			delay := baseDelay << (attempt - 1)
			if onRetry != nil {
				msg := fmt.Sprintf("High traffic. Retrying in %s (attempt %d of %d)...", delay, attempt, maxAttempts)
				onRetry(msg, attempt)
			}
			if err := wait(ctx, delay); err != nil {
				return zero, err
			}
		default:
			return zero, err
		}
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
