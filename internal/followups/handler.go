package followups

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/handlers"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/routes"
)

// Handler provides HTTP endpoints for follow-up operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "followups"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for follow-up endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/followups",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/equipment/{id}", Handler: h.History},
			{Method: "GET", Pattern: "/inspectors", Handler: h.AvailableInspectors},
			{Method: "POST", Pattern: "/{id}/schedule", Handler: h.Schedule},
			{Method: "POST", Pattern: "/{id}/cancel", Handler: h.Cancel},
			{Method: "POST", Pattern: "/{id}/complete", Handler: h.Complete},
			{Method: "POST", Pattern: "/materialize", Handler: h.Materialize},
			{Method: "POST", Pattern: "/overdue-check", Handler: h.CheckOverdue},
		},
	}
}

// List returns a paginated list of follow-ups with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single follow-up by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	f, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// History returns every follow-up of an equipment in creation order.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	items, err := h.sys.History(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// AvailableInspectors lists inspectors free on ?date=YYYY-MM-DD, optionally
// restricted by ?specialization=.
func (h *Handler) AvailableInspectors(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidDate)
		return
	}

	var spec *registry.Specialization
	if s := registry.Specialization(r.URL.Query().Get("specialization")); s != "" {
		if s != registry.Mechanical && s != registry.Electrical {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
		spec = &s
	}

	users, err := h.sys.AvailableInspectors(r.Context(), date, spec)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, users)
}

// Schedule accepts the schedule form for a pending follow-up.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd ScheduleCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, decodeError(err))
		return
	}

	f, err := h.sys.Schedule(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Cancel closes a follow-up on behalf of an admin.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		AdminID uuid.UUID `json:"admin_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	f, err := h.sys.Cancel(r.Context(), id, req.AdminID)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Complete records the finalized result assessment of a follow-up inspection.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		ResultAssessmentID uuid.UUID `json:"result_assessment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	f, child, err := h.sys.Complete(r.Context(), id, req.ResultAssessmentID)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]*Followup{
		"followup": f,
		"child":    child,
	})
}

// Materialize runs the due-today sweep on demand.
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.MaterializeDueToday(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// CheckOverdue runs the overdue sweep on demand.
func (h *Handler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.CheckOverdue(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return uuid.Nil, false
	}
	return id, true
}

// decodeError keeps validation errors raised while decoding and replaces
// anything else with ErrInvalidRequest.
func decodeError(err error) error {
	if failure.Kind(err) == failure.ErrValidation {
		return err
	}
	return ErrInvalidRequest
}
