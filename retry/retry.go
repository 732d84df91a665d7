// Package retry bounds a failing operation to a fixed number of attempts
// with exponential backoff between them.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultMaxAttempts is the total attempt budget, first try included.
const DefaultMaxAttempts = 3

// DefaultBaseDelay is the wait before the second attempt; the wait doubles
// after every further failure.
const DefaultBaseDelay = 1 * time.Second

// Result reports how a bounded retry ended.
type Result struct {
	Attempts int   // attempts actually made, >= 1
	Err      error // nil on success, last failure otherwise
}

// Succeeded reports whether the operation eventually completed.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Do runs op until it succeeds or maxAttempts consecutive failures occur.
// Between attempt n and n+1 it waits base * 2^(n-1). Exhaustion is reported
// through the Result, never as a panic or process abort.
func Do(ctx context.Context, maxAttempts int, base time.Duration, op func(context.Context) error) Result {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = base * time.Duration(1<<uint(maxAttempts))
	bo.MaxElapsedTime = 0

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		return op(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx))

	return Result{Attempts: attempts, Err: err}
}
