package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
)

// Upstream (NIBSS) errors.
//
// ErrLocalPersistenceFailure marks the documented asymmetric state: the
// upstream mandate exists but the local projection was never written. It must
// stay distinguishable from the "nothing happened" upstream errors so callers
// know whether a retry is safe.
var (
	ErrCredentialUnavailable   = errors.New("api token unavailable")
	ErrUpstreamClient          = errors.New("upstream rejected request")
	ErrUpstreamUnavailable     = errors.New("upstream unavailable")
	ErrUpstreamTimeout         = errors.New("upstream timed out")
	ErrInvalidUpstreamResponse = errors.New("invalid upstream response")
	ErrLocalPersistenceFailure = errors.New("failed to save record locally")
)

// UpstreamError carries the HTTP status and message reported by (or inferred
// for) the external mandate service. It wraps one of the upstream sentinel
// errors above so callers can classify with errors.Is.
type UpstreamError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.kind
}

// NewUpstreamClientError builds an error for an upstream 4xx rejection
func NewUpstreamClientError(statusCode int, message string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Message: message, kind: ErrUpstreamClient}
}

// NewUpstreamUnavailableError builds an error for an upstream 5xx or transport failure
func NewUpstreamUnavailableError(statusCode int, message string) *UpstreamError {
	if statusCode < 500 {
		statusCode = 502
	}
	return &UpstreamError{StatusCode: statusCode, Message: message, kind: ErrUpstreamUnavailable}
}

// NewUpstreamTimeoutError builds an error for an upstream request timeout
func NewUpstreamTimeoutError(message string) *UpstreamError {
	if message == "" {
		message = "Request timed out"
	}
	return &UpstreamError{StatusCode: 504, Message: message, kind: ErrUpstreamTimeout}
}
