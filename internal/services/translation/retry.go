// File: internal/services/translation/retry.go
package translation

import (
	"context"
	"errors"
	"time"
)

// RetryWithBackoff runs fn up to maxAttempts times, waiting attempt*delay
// between tries. Non-retryable translation errors stop immediately.
func RetryWithBackoff(ctx context.Context, maxAttempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var tErr *TranslationError
		if errors.As(err, &tErr) && !tErr.Retryable() {
			return err
		}

		// Don't wait after last attempt
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * delay):
			}
		}
	}
	return lastErr
}
