// Package module mounts self-contained HTTP routers under single-level path prefixes.
package module

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/bestiary/pkg/middleware"
)

// Module serves an inner router beneath a prefix such as "/api".
// Requests reach the inner router with the prefix removed.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module. It panics when prefix is not a single-level path.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

// Handler returns the inner router wrapped in the module middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Serve dispatches req to the inner router with the prefix stripped.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, withPath(req, strip(req.URL.Path, m.prefix)))
}

func withPath(req *http.Request, path string) *http.Request {
	r := req.Clone(req.Context())
	u := *req.URL
	u.Path = path
	u.RawPath = ""
	r.URL = &u
	return r
}

func strip(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1:
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}

