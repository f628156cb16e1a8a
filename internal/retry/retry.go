package retry

import (
	"context"
	"time"
)

const maxDelay = 5 * time.Second

// DoWithRetry calls fn up to attempts times, doubling the pause between calls
// (capped at five seconds). It returns the last error, or ctx.Err() once the
// context is done.
func DoWithRetry(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := baseDelay

	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return err
}
