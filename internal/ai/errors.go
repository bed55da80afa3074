package ai

import "fmt"

// RateLimitedError is returned when the upstream service keeps reporting a
// throttling condition after all retry attempts are spent.
type RateLimitedError struct {
	Attempts int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("upstream rate limited after %d attempts", e.Attempts)
}

// UpstreamError wraps any non-throttling failure of the generative or
// embedding service. Callers must never treat its text as model output.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
