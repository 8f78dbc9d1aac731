package assessments

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/handlers"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/routes"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

// Handler provides HTTP endpoints for assessment operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "assessments"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for assessment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assessments",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/pending", Handler: h.Pending},
			{Method: "GET", Pattern: "/pending-engineer", Handler: h.PendingEngineer},
			{Method: "GET", Pattern: "/pending-admin", Handler: h.PendingAdmin},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/snapshot", Handler: h.Snapshot},
			{Method: "POST", Pattern: "/{id}/verdicts", Handler: h.SubmitVerdict},
			{Method: "POST", Pattern: "/{id}/engineer-verdict", Handler: h.SubmitEngineerVerdict},
			{Method: "POST", Pattern: "/{id}/admin-resolution", Handler: h.AdminResolve},
			{Method: "POST", Pattern: "/{id}/schedule-inline", Handler: h.ScheduleInline},
		},
	}
}

// Create opens the assessment of an assignment, or returns the one already open.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AssignmentID uuid.UUID `json:"assignment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	a, err := h.sys.Create(r.Context(), req.AssignmentID)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, a)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	a, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, a)
}

// Pending lists open assessments still awaiting inspector verdicts,
// optionally for one inspector via ?inspector_id=.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	var inspectorID *uuid.UUID
	if v := r.URL.Query().Get("inspector_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
		inspectorID = &id
	}

	result, err := h.sys.PendingAssessments(r.Context(), page, inspectorID)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) PendingEngineer(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.PendingEngineerReviews(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) PendingAdmin(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.PendingAdminReviews(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Snapshot streams the archived JSON of a finalized assessment.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rc, err := h.sys.Snapshot(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

// SubmitVerdict records an inspector verdict.
func (h *Handler) SubmitVerdict(w http.ResponseWriter, r *http.Request) {
	var cmd VerdictCommand
	h.mutate(w, r, &cmd, func(id uuid.UUID) (*Result, error) {
		return h.sys.SubmitVerdict(r.Context(), id, cmd)
	})
}

// SubmitEngineerVerdict records the engineer review of an escalated assessment.
func (h *Handler) SubmitEngineerVerdict(w http.ResponseWriter, r *http.Request) {
	var cmd EngineerCommand
	h.mutate(w, r, &cmd, func(id uuid.UUID) (*Result, error) {
		return h.sys.SubmitEngineerVerdict(r.Context(), id, cmd)
	})
}

// AdminResolve records the binding admin decision.
func (h *Handler) AdminResolve(w http.ResponseWriter, r *http.Request) {
	var cmd AdminCommand
	h.mutate(w, r, &cmd, func(id uuid.UUID) (*Result, error) {
		return h.sys.AdminResolve(r.Context(), id, cmd)
	})
}

// ScheduleInline resolves the open escalation with monitor and schedules
// the follow-up in one request.
func (h *Handler) ScheduleInline(w http.ResponseWriter, r *http.Request) {
	var cmd InlineScheduleCommand
	h.mutate(w, r, &cmd, func(id uuid.UUID) (*Result, error) {
		return h.sys.ScheduleFollowupInline(r.Context(), id, cmd)
	})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, cmd any, fn func(uuid.UUID) (*Result, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := json.NewDecoder(r.Body).Decode(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, decodeError(err))
		return
	}

	result, err := fn(id)
	if err != nil {
		handlers.RespondError(w, h.logger, failure.MapHTTPStatus(err), err)
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
