package module

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/handlers"
)

// Router dispatches requests to mounted modules by their first path segment
// and serves everything else from its own ServeMux.
type Router struct {
	modules map[string]*Module
	mux     *http.ServeMux
}

func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		mux:     http.NewServeMux(),
	}
}

// Mount routes the module's prefix to it. Each prefix can be mounted once.
func (r *Router) Mount(m *Module) error {
	if _, taken := r.modules[m.prefix]; taken {
		return fmt.Errorf("module prefix already mounted: %s", m.prefix)
	}
	r.modules[m.prefix] = m
	return nil
}

// Handle registers a handler outside of any module.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Probe registers a JSON status endpoint. It answers 200 while check returns
// nil and 503 with the error otherwise.
func (r *Router) Probe(pattern string, check func(ctx context.Context) error) {
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		if err := check(req.Context()); err != nil {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
		req.URL.Path = strings.TrimSuffix(p, "/")
	}

	if m, ok := r.modules[firstSegment(req.URL.Path)]; ok {
		m.ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path[min(1, len(path)):], '/'); i >= 0 {
		return path[:i+1]
	}
	return path
}
