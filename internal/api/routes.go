package api

import (
	"net/http"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) []string {
	return routes.Register(
		mux,
		domain.Assessments.Handler().Routes(),
		domain.Followups.Handler().Routes(),
		domain.Dashboard.Handler().Routes(),
	)
}
