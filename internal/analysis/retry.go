package analysis

import (
	"context"
	"errors"
	"time"
)

const baseBackoff = 500 * time.Millisecond

// retryBounded runs fn up to maxRetries+1 times with exponential backoff.
// Only transient AIErrors are retried; terminal errors and context
// expiration end the loop immediately.
func retryBounded(ctx context.Context, maxRetries int, onRetry func(attempt int), fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var aiErr *AIError
		if !errors.As(lastErr, &aiErr) || !aiErr.Transient {
			return lastErr
		}
		if attempt == maxRetries {
			break
		}
		if onRetry != nil {
			onRetry(attempt + 1)
		}
		backoff := baseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return &AIError{Op: "backoff", Transient: true, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}
	return lastErr
}
