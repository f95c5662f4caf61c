// Package errors provides the structured error type shared by leaderboard
// packages and its mapping onto HTTP status codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified failure.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks malformed, missing, or rejected client input.
	CodeValidation Code = "VALIDATION"

	// CodeStore marks an I/O failure against the score store.
	CodeStore Code = "STORE"

	// CodeRouteNotFound marks a method/path pair with no handler.
	CodeRouteNotFound Code = "ROUTE_NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may reasonably retry the failed
// operation. Validation and routing failures never succeed on retry.
func (c Code) Retryable() bool {
	return c == CodeStore
}
