package assessments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// PointsPerAssessment is awarded to each inspector of a finalized assessment.
const PointsPerAssessment = 10

// Applied describes the consequences applied for a finalized assessment.
type Applied struct {
	EquipmentStopped bool                `json:"equipment_stopped"`
	Completed        *followups.Followup `json:"completed_followup,omitempty"`
	Followup         *followups.Followup `json:"followup,omitempty"`
}

// Applicator applies a finalized assessment's real-world consequences. It
// runs inside the finalizing transaction, after the finalize guard has
// matched, so it executes once per assessment.
type Applicator struct {
	registry  registry.Store
	followups followups.System
	logger    *slog.Logger
}

// NewApplicator creates an Applicator.
func NewApplicator(reg registry.Store, fs followups.System, logger *slog.Logger) *Applicator {
	return &Applicator{
		registry:  reg,
		followups: fs,
		logger:    logger.With("system", "outcomes"),
	}
}

// Apply mutates equipment and assignment state, awards points, continues or
// starts the monitoring cycle, and queues the finalize notifications.
// schedule, when set, schedules the monitor follow-up in the same step.
func (o *Applicator) Apply(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	a *Assessment,
	schedule *followups.ScheduleCommand,
) (*Applied, error) {
	if !a.Finalized() {
		return nil, fmt.Errorf("apply outcome of unfinalized assessment %s", a.ID)
	}
	final := *a.FinalStatus
	applied := &Applied{}

	eq, err := o.registry.FindEquipment(ctx, tx, a.EquipmentID)
	if err != nil {
		return nil, err
	}

	switch final {
	case verdict.Stop:
		if err := o.registry.StopEquipment(ctx, tx, eq.ID, a.ID); err != nil {
			return nil, err
		}
		applied.EquipmentStopped = true
	case verdict.Monitor, verdict.Operational:
		restored, err := o.registry.RestoreEquipment(ctx, tx, eq.ID)
		if err != nil {
			return nil, err
		}
		if !restored {
			o.logger.Info("equipment left stopped", "equipment_id", eq.ID, "assessment_id", a.ID)
		}
	default:
		return nil, verdict.ErrInvalid
	}

	if err := o.registry.CompleteAssignment(ctx, tx, a.AssignmentID); err != nil {
		return nil, err
	}

	for _, inspector := range a.Inspectors() {
		if _, err := o.registry.AwardPoints(ctx, tx, a.ID, inspector, PointsPerAssessment); err != nil {
			return nil, err
		}
	}

	if err := o.continueCycle(ctx, tx, batch, a, final, schedule, applied); err != nil {
		return nil, err
	}

	batch.Add(finalizedEvent(a, eq))
	if final == verdict.Stop {
		batch.Add(stoppedEvent(a, eq))
	}

	o.logger.Info("assessment outcome applied",
		"assessment_id", a.ID,
		"final_status", final,
		"resolved_by", *a.ResolvedBy,
	)
	return applied, nil
}

// continueCycle completes the follow-up an assignment was materialized from,
// or starts a new cycle for a monitor result on a routine assignment. A source
// follow-up that was cancelled or completed in the meantime no longer owns the
// cycle, so the result is treated as routine.
func (o *Applicator) continueCycle(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	a *Assessment,
	final verdict.Verdict,
	schedule *followups.ScheduleCommand,
	applied *Applied,
) error {
	asg, err := o.registry.FindAssignment(ctx, tx, a.AssignmentID)
	if err != nil {
		return err
	}

	switch ref := asg.Source.(type) {
	case registry.FollowupRef:
		done, child, err := o.followups.CompleteWithResult(ctx, tx, batch, ref.ID, final, a.ID)
		if errors.Is(err, followups.ErrClosed) {
			o.logger.Warn("source followup already closed",
				"followup_id", ref.ID,
				"assessment_id", a.ID,
				"final_status", final,
			)
			return o.startCycle(ctx, tx, batch, a, final, schedule, applied)
		}
		if err != nil {
			return err
		}
		applied.Completed = done
		applied.Followup = child

		if child != nil && schedule != nil {
			scheduled, err := o.followups.SchedulePending(ctx, tx, batch, child.ID, *schedule)
			if err != nil {
				return err
			}
			applied.Followup = scheduled
		}
		return nil

	case registry.InspectionRef, registry.AssessmentRef, nil:
		return o.startCycle(ctx, tx, batch, a, final, schedule, applied)

	default:
		return fmt.Errorf("assignment %s has unsupported source %T", asg.ID, ref)
	}
}

// startCycle opens a monitoring cycle for a monitor result. Other results
// need no follow-up.
func (o *Applicator) startCycle(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	a *Assessment,
	final verdict.Verdict,
	schedule *followups.ScheduleCommand,
	applied *Applied,
) error {
	if final != verdict.Monitor {
		return nil
	}

	var (
		f   *followups.Followup
		err error
	)
	if schedule != nil {
		f, err = o.followups.ScheduleInline(ctx, tx, batch, a.ID, a.EquipmentID, *schedule)
	} else {
		f, err = o.followups.CreatePending(ctx, tx, batch, a.ID, a.EquipmentID)
	}
	if err != nil {
		return err
	}
	applied.Followup = f
	return nil
}
