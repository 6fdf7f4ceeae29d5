// Package retry provides a bounded fixed-backoff retry loop for
// transient failures.
package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts times, sleeping backoff between attempts.
// It stops early when fn succeeds, when retryable reports the error as
// permanent, or when ctx is done. The last error is returned.
func Do(ctx context.Context, attempts int, backoff time.Duration, retryable func(error) bool, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
