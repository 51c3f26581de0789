package openobserve

import "fmt"

// ConfigError reports invalid client configuration. It is fatal at
// startup: a client is never constructed from a bad config.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid OpenObserve configuration: " + e.Reason
}

// ConnectionError reports a transport-level failure: connection refusal,
// DNS failure, or an exceeded timeout. The request never produced an HTTP
// status.
type ConnectionError struct {
	Message string
	Err     error
}

func (e *ConnectionError) Error() string { return e.Message }

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError reports an HTTP 401 or 403 from the backend.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string { return e.Message }

// APIError reports any other non-2xx response. Body retains the complete
// response text for programmatic inspection; Error() truncates it.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// ValidationError reports a bad tool argument. It is raised before any
// network request is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// truncateForLog returns at most max characters of s for log output.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...[truncated]"
}
