// Package module mounts self-contained HTTP modules under single-segment path
// prefixes. Each module owns its router and middleware chain and sees request
// paths with its prefix removed.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/middleware"
)

// Module serves an inner handler under a path prefix.
type Module struct {
	prefix  string
	handler http.Handler
	chain   middleware.Chain
}

// New creates a Module for a single-segment prefix such as "/api".
func New(prefix string, handler http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{prefix: prefix, handler: handler}, nil
}

func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware to the module's chain.
func (m *Module) Use(mw ...func(http.Handler) http.Handler) {
	m.chain.Use(mw...)
}

// ServeHTTP strips the prefix and dispatches through the middleware chain.
// A request outside the prefix is passed on unchanged.
func (m *Module) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rest, ok := strings.CutPrefix(r.URL.Path, m.prefix); ok {
		if rest == "" {
			rest = "/"
		}
		r = withPath(r, rest)
	}
	m.chain.Then(m.handler).ServeHTTP(w, r)
}

func withPath(r *http.Request, path string) *http.Request {
	out := new(http.Request)
	*out = *r
	u := new(url.URL)
	*u = *r.URL
	u.Path = path
	u.RawPath = ""
	out.URL = u
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1 || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single path segment: %s", prefix)
	}
	return nil
}
