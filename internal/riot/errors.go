package riot

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnauthorized means the API key was rejected. Every further call would fail the same way.
	ErrUnauthorized = errors.New("riot api rejected credentials")
	// ErrNotFound means the requested entity does not exist upstream.
	ErrNotFound = errors.New("riot api entity not found")
	// ErrMalformed means the response could not be mapped.
	ErrMalformed = errors.New("malformed riot api response")
)

// StatusError is a non-OK response that is neither throttling nor a known terminal status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("riot api returned status %d", e.StatusCode)
}

// ThrottledError is returned once the throttling retry ceiling is exhausted.
type ThrottledError struct {
	Attempts   int
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("riot api still throttling after %d attempts (retry after %s)", e.Attempts, e.RetryAfter)
}

// IsFatal reports whether err is systemic, so that continuing with other items is pointless.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
