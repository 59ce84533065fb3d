// Package retry holds the one backoff policy shared by the embedder and
// vector-store HTTP clients: base 250ms, factor 2, cap 8s, 5 attempts.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy returns a fresh exponential backoff using the shared tuning.
// A fresh instance is required per call since ExponentialBackOff carries
// internal retry-count state.
func Policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.Multiplier = 2
	b.MaxInterval = 8 * time.Second
	return b
}

// Do runs op with the shared retry policy, retrying up to 5 attempts.
// op should return a backoff.Permanent-wrapped error for non-retryable
// failures (e.g. 4xx other than 429).
func Do[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, op, backoff.WithBackOff(Policy()), backoff.WithMaxTries(5))
}
