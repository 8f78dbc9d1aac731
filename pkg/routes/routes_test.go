package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/routes"
)

func TestRegister(t *testing.T) {
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body + ":" + r.PathValue("id")))
		}
	}

	mux := http.NewServeMux()
	registered := routes.Register(mux,
		routes.Group{
			Prefix: "/followups",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: reply("list")},
				{Method: "GET", Pattern: "/{id}", Handler: reply("find")},
				{Method: "POST", Pattern: "/{id}/cancel", Handler: reply("cancel")},
			},
		},
		routes.Group{
			Prefix: "/dashboard",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: reply("stats")},
			},
		},
	)

	assert.Equal(t, []string{
		"GET /followups",
		"GET /followups/{id}",
		"POST /followups/{id}/cancel",
		"GET /dashboard",
	}, registered)

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{"GET", "/followups", http.StatusOK, "list:"},
		{"GET", "/followups/42", http.StatusOK, "find:42"},
		{"POST", "/followups/42/cancel", http.StatusOK, "cancel:42"},
		{"GET", "/dashboard", http.StatusOK, "stats:"},
		{"DELETE", "/followups/42", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRegisterConflictPanics(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	group := routes.Group{
		Prefix: "/assessments",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: noop},
			{Method: "GET", Pattern: "/{key}", Handler: noop},
		},
	}

	assert.Panics(t, func() { routes.Register(http.NewServeMux(), group) })
}
