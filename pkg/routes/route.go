// Package routes declares HTTP routes once and derives both mux registration and
// OpenAPI path documentation from the same declarations.
package routes

import (
	"net/http"

	"github.com/JaimeStill/bestiary/pkg/openapi"
)

// Route binds an HTTP method and pattern to a handler. OpenAPI is optional.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}
