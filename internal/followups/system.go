package followups

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// System defines the public contract for follow-up operations.
//
// The methods taking a repository.DB join the caller's transaction and append
// their notifications to batch; the caller publishes the batch after commit.
type System interface {
	Handler() *Handler

	CreatePending(
		ctx context.Context,
		tx repository.DB,
		batch *notifications.Batch,
		assessmentID, equipmentID uuid.UUID,
	) (*Followup, error)

	ScheduleInline(
		ctx context.Context,
		tx repository.DB,
		batch *notifications.Batch,
		assessmentID, equipmentID uuid.UUID,
		cmd ScheduleCommand,
	) (*Followup, error)

	// SchedulePending schedules a pending follow-up within the caller's transaction.
	SchedulePending(
		ctx context.Context,
		tx repository.DB,
		batch *notifications.Batch,
		id uuid.UUID,
		cmd ScheduleCommand,
	) (*Followup, error)

	// CompleteWithResult completes the follow-up with a finalized result and
	// returns the child follow-up created for a monitor result.
	CompleteWithResult(
		ctx context.Context,
		tx repository.DB,
		batch *notifications.Batch,
		id uuid.UUID,
		result verdict.Verdict,
		resultAssessmentID uuid.UUID,
	) (*Followup, *Followup, error)

	Find(ctx context.Context, id uuid.UUID) (*Followup, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Followup], error)
	History(ctx context.Context, equipmentID uuid.UUID) ([]Followup, error)

	Schedule(ctx context.Context, id uuid.UUID, cmd ScheduleCommand) (*Followup, error)
	Cancel(ctx context.Context, id, adminID uuid.UUID) (*Followup, error)
	// Complete completes the follow-up from a finalized assessment's final status.
	Complete(ctx context.Context, id, resultAssessmentID uuid.UUID) (*Followup, *Followup, error)

	AvailableInspectors(
		ctx context.Context,
		date time.Time,
		spec *registry.Specialization,
	) ([]registry.User, error)

	MaterializeDueToday(ctx context.Context) (SweepResult, error)
	CheckOverdue(ctx context.Context) (SweepResult, error)
}

// SweepResult summarizes one sweep run. Records examined but neither
// processed nor failed were skipped because another run handled them.
type SweepResult struct {
	Examined  int `json:"examined"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}
