package crawler

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrMalformedInput marks failures caused by input that will never parse, no
// matter how often it is fetched again.
var ErrMalformedInput = errors.New("malformed input")

// nonRetryableStatus lists HTTP statuses that fail immediately.
var nonRetryableStatus = map[int]struct{}{
	http.StatusBadRequest:          {},
	http.StatusUnauthorized:        {},
	http.StatusForbidden:           {},
	http.StatusNotFound:            {},
	http.StatusUnprocessableEntity: {},
}

// HTTPError reports a response with an unusable status code.
type HTTPError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Retryable reports whether the status may succeed on a later attempt.
func (e *HTTPError) Retryable() bool {
	_, permanent := nonRetryableStatus[e.StatusCode]
	return !permanent
}

// RateLimited reports whether the server asked us to slow down.
func (e *HTTPError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// RetryError is returned once every attempt of an operation has failed.
type RetryError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("%s: giving up after %d attempts: %v", e.Label, e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}
