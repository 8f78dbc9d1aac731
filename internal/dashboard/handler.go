package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/handlers"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/routes"
)

// Handler provides the dashboard endpoint.
type Handler struct {
	sys    System
	logger *slog.Logger
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "dashboard")}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/dashboard",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Stats},
		},
	}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}
