package assessments

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
)

// System defines the public contract for the assessment engine and its
// escalation tiers.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, assignmentID uuid.UUID) (*Assessment, error)
	Find(ctx context.Context, id uuid.UUID) (*Assessment, error)

	SubmitVerdict(ctx context.Context, id uuid.UUID, cmd VerdictCommand) (*Result, error)
	SubmitEngineerVerdict(ctx context.Context, id uuid.UUID, cmd EngineerCommand) (*Result, error)
	AdminResolve(ctx context.Context, id uuid.UUID, cmd AdminCommand) (*Result, error)
	// ScheduleFollowupInline resolves the open escalation with a monitor
	// verdict and schedules the follow-up in the same transaction.
	ScheduleFollowupInline(ctx context.Context, id uuid.UUID, cmd InlineScheduleCommand) (*Result, error)

	PendingAssessments(
		ctx context.Context,
		page pagination.PageRequest,
		inspectorID *uuid.UUID,
	) (*pagination.PageResult[Assessment], error)
	PendingEngineerReviews(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Assessment], error)
	PendingAdminReviews(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Assessment], error)

	// Snapshot streams the archived JSON of a finalized assessment.
	Snapshot(ctx context.Context, id uuid.UUID) (io.ReadCloser, error)
}

// VerdictCommand is an inspector's verdict submission.
type VerdictCommand struct {
	InspectorID   uuid.UUID       `json:"inspector_id"`
	Verdict       verdict.Verdict `json:"verdict"`
	Justification string          `json:"justification"`
}

// EngineerCommand is an engineer review. Followup is used only when the
// review finalizes with monitor.
type EngineerCommand struct {
	EngineerID uuid.UUID                  `json:"engineer_id"`
	Verdict    verdict.Verdict            `json:"verdict"`
	Notes      string                     `json:"notes"`
	Followup   *followups.ScheduleCommand `json:"followup,omitempty"`
}

// AdminCommand is an admin resolution. Followup is used only for a monitor decision.
type AdminCommand struct {
	AdminID  uuid.UUID                  `json:"admin_id"`
	Decision verdict.Verdict            `json:"decision"`
	Notes    string                     `json:"notes"`
	Followup *followups.ScheduleCommand `json:"followup,omitempty"`
}

// InlineScheduleCommand carries a monitor resolution together with its
// follow-up schedule.
type InlineScheduleCommand struct {
	ActorID  uuid.UUID                 `json:"actor_id"`
	Notes    string                    `json:"notes"`
	Followup followups.ScheduleCommand `json:"followup"`
}

// Result is an assessment after a mutation, with the applied consequences
// when the mutation finalized it.
type Result struct {
	Assessment *Assessment `json:"assessment"`
	Applied    *Applied    `json:"applied,omitempty"`
}
