// Package routes declares HTTP routes as data and registers them on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and a pattern relative to its group to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a set of routes sharing a path prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Patterns returns the ServeMux patterns of the group in declaration order.
func (g Group) Patterns() []string {
	out := make([]string, len(g.Routes))
	for i, r := range g.Routes {
		out[i] = r.Method + " " + g.Prefix + r.Pattern
	}
	return out
}

// Register adds every route of groups to mux and returns the patterns it
// registered. ServeMux panics on conflicting patterns, so a bad table fails
// at startup.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var registered []string
	for _, g := range groups {
		for i, pattern := range g.Patterns() {
			mux.HandleFunc(pattern, g.Routes[i].Handler)
			registered = append(registered, pattern)
		}
	}
	return registered
}
