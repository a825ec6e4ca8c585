package transport

import (
	"errors"
	"fmt"
)

// Common transport error types
var (
	ErrRateLimited      = errors.New("outbound rate limit exceeded")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Error represents a failed backend call with additional context
type Error struct {
	Op         string // HTTP method
	Path       string // Request path, without the query string
	StatusCode int    // Zero when no response was received
	Body       []byte // Response body for status failures
	Err        error  // Underlying error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d: %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewStatusError creates an Error for a non-200 response
func NewStatusError(op, path string, status int, body []byte) *Error {
	return &Error{
		Op:         op,
		Path:       path,
		StatusCode: status,
		Body:       body,
		Err:        ErrUnexpectedStatus,
	}
}

// StatusCode returns the response status carried by err, or 0
func StatusCode(err error) int {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err is a status failure with the given code
func IsStatus(err error, code int) bool {
	return StatusCode(err) == code
}

// IsRateLimited reports whether the call was refused by the local limiter
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
