// Package failure defines the error kinds surfaced to callers of the inspection
// engine. Domain packages wrap one of the kinds in their own sentinel errors so
// that callers can branch on the kind with errors.Is.
package failure

import (
	"errors"
	"net/http"
)

// Error kinds. None of them is retried automatically.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrBusinessState = errors.New("invalid state for operation")
)

// Kind returns the kind sentinel wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrBusinessState} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// MapHTTPStatus maps error kinds to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch Kind(err) {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrNotFound:
		return http.StatusNotFound
	case ErrForbidden:
		return http.StatusForbidden
	case ErrBusinessState:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
