package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized marks a 401 from the Platform. The auth-aware client
	// reacts to it with one token refresh and retry.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest marks a 400 from the Platform.
	ErrBadRequest = errors.New("bad_request")
	// ErrInternal marks a 500 from the Platform.
	ErrInternal = errors.New("internal")
	// ErrProtocol means the Platform broke its own pagination contract.
	// It is not retryable.
	ErrProtocol = errors.New("platform: protocol error")
)

// APIError is returned for every non-2xx Platform response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
	kind       error
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("platform api: status=%d code=%s message=%s body=%s", e.StatusCode, e.Code, e.Message, e.Body)
	}
	return fmt.Sprintf("platform api: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// Unwrap exposes the error class so callers can use errors.Is.
func (e *APIError) Unwrap() error { return e.kind }

func newAPIError(statusCode int, message, body string) *APIError {
	e := &APIError{StatusCode: statusCode, Message: message, Body: body, Code: "unexpected_status"}
	switch statusCode {
	case 401:
		e.kind, e.Code = ErrUnauthorized, ErrUnauthorized.Error()
	case 400:
		e.kind, e.Code = ErrBadRequest, ErrBadRequest.Error()
	case 500:
		e.kind, e.Code = ErrInternal, ErrInternal.Error()
	}
	return e
}

// IsUnauthorized reports whether err is a Platform 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// GrantError wraps a rejected client-credentials grant. The refresher never
// retries it; the caller decides.
type GrantError struct {
	Err error
}

func (e *GrantError) Error() string { return "platform: token grant failed: " + e.Err.Error() }

func (e *GrantError) Unwrap() error { return e.Err }
