// Package middleware provides the middleware chain used by HTTP modules and
// the request middleware of the API.
package middleware

import "net/http"

// Chain is an ordered middleware stack. The first entry wraps outermost, so it
// sees the request first and the response last.
type Chain []func(http.Handler) http.Handler

// Use appends middleware to the chain.
func (c *Chain) Use(mw ...func(http.Handler) http.Handler) {
	*c = append(*c, mw...)
}

// Then wraps handler with every middleware in the chain.
func (c Chain) Then(handler http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		handler = c[i](handler)
	}
	return handler
}
