package catalogs

import (
	"errors"
	"net/http"
)

// Domain errors for catalog operations. ErrConflict stays inside the
// resolver, which retries it.
var (
	ErrInvalidName = errors.New("catalog entry name must not be empty")
	ErrInvalidKind = errors.New("catalog must be style, animal, or status")
	ErrConflict    = errors.New("catalog entry name conflict")
)

// MapHTTPStatus maps catalog domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrInvalidKind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
