package gateway

import (
	"errors"
	"fmt"
)

// returned when the remote authority has no record of the session.
// Distinct from transport failures: a 404 on lookup means "no session",
// not "the backend is down".
var ErrSessionNotFound = errors.New("session not found")

// normalized shape for every gateway failure
type APIError struct {
	Message    string
	StatusCode int // 0 for transport-level failures
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
	}

	return fmt.Sprintf("gateway: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// wraps a transport-level failure (no HTTP status available)
func transportError(message string, cause error) *APIError {
	return &APIError{Message: message, Cause: cause}
}
