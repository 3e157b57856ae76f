package client

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. The widget maps these onto user-facing
// retry affordances; only CSRF failures and generic network errors are ever
// retried automatically inside this package.
var (
	// ErrTimeout reports a request that exceeded the configured deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrThrottled reports a 429 response. Never auto-retried.
	ErrThrottled = errors.New("request throttled")
	// ErrUnavailable reports a 503 response. Never auto-retried.
	ErrUnavailable = errors.New("service unavailable")
	// ErrCsrfExpired reports a CSRF rejection that survived token refresh retries.
	ErrCsrfExpired = errors.New("csrf token rejected")
	// ErrSessionExpired reports a 404 for a session the server no longer knows.
	ErrSessionExpired = errors.New("session expired")
	// ErrNetwork reports a transport failure after retries were exhausted.
	ErrNetwork = errors.New("network error")
)

// StatusError carries a non-2xx response that does not map onto one of the
// sentinel kinds above.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// Retryable reports whether the request layer may retry the failure on its own.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrCsrfExpired)
}
