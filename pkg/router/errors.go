package router

import (
	"errors"
	"fmt"
)

// Routing errors.
var (
	// ErrRouteNotFound is returned by Match when no registered route matches.
	ErrRouteNotFound = errors.New("route not found")

	// ErrAmbiguousRoute is returned when a path would give one node two
	// dynamic children with different parameter names.
	ErrAmbiguousRoute = errors.New("ambiguous route")

	// ErrDuplicateRoute is returned when a method is registered twice on one path.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrInvalidPath is returned for malformed path patterns.
	ErrInvalidPath = errors.New("invalid route path")

	// ErrNilHandler is returned when registering a route without a handler.
	ErrNilHandler = errors.New("nil handler")
)

// HTTPError represents an HTTP error with a status code and message.
// It can be used to return specific HTTP errors from handlers.
// When returned from a handler, the router will use the status code and message
// to generate the response. Any other error becomes a 500 without its detail.
type HTTPError struct {
	StatusCode int    // HTTP status code (e.g., 400, 404, 500)
	Message    string // Error message to be sent in the response body
}

// Error implements the error interface.
// It returns a string representation of the HTTP error in the format "status: message".
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates a new HTTPError with the specified status code and message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}
