package assessments

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

// Domain errors for assessment operations.
var (
	ErrNotFound         = fmt.Errorf("%w: assessment", failure.ErrNotFound)
	ErrSnapshotNotFound = fmt.Errorf("%w: assessment snapshot", failure.ErrNotFound)
	ErrDuplicate        = fmt.Errorf("%w: assessment already exists for assignment", failure.ErrBusinessState)

	ErrInvalidRequest = fmt.Errorf("%w: malformed request", failure.ErrValidation)
	ErrSlotFilled     = fmt.Errorf("%w: verdict already submitted for this slot", failure.ErrValidation)
	ErrNotesRequired  = fmt.Errorf("%w: notes are required", failure.ErrValidation)

	ErrNotAssignedInspector = fmt.Errorf("%w: not an assigned inspector of this assessment", failure.ErrForbidden)
	ErrNotEngineer          = fmt.Errorf("%w: only engineers can review escalated assessments", failure.ErrForbidden)
	ErrNotAdmin             = fmt.Errorf("%w: only admins can resolve escalated assessments", failure.ErrForbidden)

	ErrChecklistNotStarted = fmt.Errorf("%w: no checklist of the assignment is complete", failure.ErrBusinessState)
	ErrFinalized           = fmt.Errorf("%w: assessment is already finalized", failure.ErrBusinessState)
	ErrNotAtEngineerTier   = fmt.Errorf("%w: assessment is not awaiting engineer review", failure.ErrBusinessState)
	ErrEngineerReviewed    = fmt.Errorf("%w: engineer verdict already recorded", failure.ErrBusinessState)
	ErrNotAtAdminTier      = fmt.Errorf("%w: assessment is not awaiting admin review", failure.ErrBusinessState)
	ErrEscalationExhausted = fmt.Errorf("%w: no escalation tier above admin", failure.ErrBusinessState)
	ErrNotEscalated        = fmt.Errorf("%w: assessment has no open escalation", failure.ErrBusinessState)
)
