package prompts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/bestiary/internal/catalogs"
)

// Domain errors for prompt operations.
var (
	ErrNotFound = errors.New("prompt not found")
	ErrInvalid  = errors.New("invalid prompt")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalid) {
		return http.StatusBadRequest
	}
	return catalogs.MapHTTPStatus(err)
}
