package followups

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

// Domain errors for follow-up operations.
var (
	ErrNotFound  = fmt.Errorf("%w: followup", failure.ErrNotFound)
	ErrDuplicate = fmt.Errorf("%w: followup already exists", failure.ErrBusinessState)

	ErrNotPending        = fmt.Errorf("%w: followup is not awaiting scheduling", failure.ErrBusinessState)
	ErrInvalidTransition = fmt.Errorf("%w: followup status does not allow this operation", failure.ErrBusinessState)
	ErrClosed            = fmt.Errorf("%w: followup is already completed or cancelled", failure.ErrBusinessState)
	ErrResultNotFinal    = fmt.Errorf("%w: result assessment is not finalized", failure.ErrBusinessState)

	ErrInvalidRequest    = fmt.Errorf("%w: malformed request", failure.ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: dates use the YYYY-MM-DD format", failure.ErrValidation)
	ErrPastDate          = fmt.Errorf("%w: date must be in the future", failure.ErrValidation)
	ErrInvalidType       = fmt.Errorf("%w: followup type must be one of routine_check, detailed_inspection, operational_test", failure.ErrValidation)
	ErrInvalidLocation   = fmt.Errorf("%w: location must be one of east, west", failure.ErrValidation)
	ErrInvalidShift      = fmt.Errorf("%w: shift must be one of day, night", failure.ErrValidation)
	ErrInspectorRequired = fmt.Errorf("%w: mechanical and electrical inspectors are required", failure.ErrValidation)
	ErrInspectorMismatch = fmt.Errorf("%w: inspector does not hold the slot's specialization", failure.ErrValidation)
	ErrInspectorOnLeave  = fmt.Errorf("%w: inspector is on approved leave on the target date", failure.ErrValidation)
	ErrResultMismatch    = fmt.Errorf("%w: result assessment does not belong to this followup's inspection", failure.ErrValidation)

	ErrNotScheduler = fmt.Errorf("%w: only engineers and admins can schedule follow-ups", failure.ErrForbidden)
	ErrNotAdmin     = fmt.Errorf("%w: only admins can cancel follow-ups", failure.ErrForbidden)
)
