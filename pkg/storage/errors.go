package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

var (
	ErrNotFound   = fmt.Errorf("%w: blob", failure.ErrNotFound)
	ErrEmptyKey   = fmt.Errorf("%w: storage key must not be empty", failure.ErrValidation)
	ErrInvalidKey = fmt.Errorf("%w: storage key must be a clean relative path", failure.ErrValidation)
	// ErrDisabled indicates no storage backend is configured.
	ErrDisabled = errors.New("storage is not configured")
)

// MapHTTPStatus maps storage errors to HTTP status codes. A disabled archive
// is a deployment condition and answers 503.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrDisabled) {
		return http.StatusServiceUnavailable
	}
	return failure.MapHTTPStatus(err)
}
