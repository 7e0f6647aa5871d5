package resilience

import (
	"context"
	"time"
)

// Retry calls fn up to attempts times, sleeping per backoff between failures.
// It stops early when ctx is done and returns the last error from fn.
func Retry(ctx context.Context, attempts int, backoff BackoffStrategy, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(backoff.NextDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
