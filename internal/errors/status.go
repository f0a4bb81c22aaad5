package errors

import (
	stdErrors "errors"
	"fmt"
)

// StatusError is a non-success HTTP response from the provider.
type StatusError struct {
	StatusCode int
	Body       string // first bytes of the response body, if any
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// NewStatusError creates a StatusError.
func NewStatusError(statusCode int, body string) *StatusError {
	return &StatusError{StatusCode: statusCode, Body: body}
}

// IsStatusError checks if err is a StatusError and returns the status code.
func IsStatusError(err error) (int, bool) {
	var statusErr *StatusError
	if stdErrors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
