package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// AIError reports a failed analysis pass. Transient errors (rate limits,
// server errors, timeouts) may be retried; terminal errors (auth, malformed
// request) fail immediately and open the circuit breaker.
type AIError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *AIError) Error() string {
	kind := "terminal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("ai analysis %s: %s error: %v", e.Op, kind, e.Err)
}

func (e *AIError) Unwrap() error { return e.Err }

// IsTerminal reports whether err is a non-transient analysis failure.
func IsTerminal(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr) && !aiErr.Transient
}

// classify maps an LLM transport error onto the transient/terminal taxonomy.
func classify(op string, err error) *AIError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500:
			return &AIError{Op: op, Transient: true, Err: err}
		case apiErr.HTTPStatusCode == 400 || apiErr.HTTPStatusCode == 401 ||
			apiErr.HTTPStatusCode == 403 || apiErr.HTTPStatusCode == 404:
			return &AIError{Op: op, Transient: false, Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &AIError{Op: op, Transient: true, Err: err}
	}
	// Network-level failures are assumed recoverable.
	return &AIError{Op: op, Transient: true, Err: err}
}
