// Package followups implements the monitoring cycle that follows a monitor
// verdict: pending follow-ups are scheduled by an engineer or admin,
// materialized into inspection assignments on their target date, flagged
// when their date passes, and completed by the assessment of the resulting
// inspection. A monitor result continues the cycle with a child follow-up.
package followups

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
)

// Type is the kind of re-inspection to perform.
type Type string

const (
	RoutineCheck       Type = "routine_check"
	DetailedInspection Type = "detailed_inspection"
	OperationalTest    Type = "operational_test"
)

// Valid reports whether t is a known follow-up type.
func (t Type) Valid() bool {
	switch t {
	case RoutineCheck, DetailedInspection, OperationalTest:
		return true
	}
	return false
}

// Shift is the working shift of a scheduled follow-up.
type Shift string

const (
	DayShift   Shift = "day"
	NightShift Shift = "night"
)

// Valid reports whether s is a known shift.
func (s Shift) Valid() bool {
	return s == DayShift || s == NightShift
}

// Followup is one scheduled re-inspection in a monitoring cycle.
type Followup struct {
	ID           uuid.UUID  `json:"id"`
	AssessmentID uuid.UUID  `json:"assessment_id"`
	EquipmentID  uuid.UUID  `json:"equipment_id"`
	ParentID     *uuid.UUID `json:"parent_followup_id,omitempty"`

	TargetDate      time.Time         `json:"target_date"`
	Type            Type              `json:"followup_type"`
	Location        registry.Location `json:"location"`
	Shift           *Shift            `json:"shift,omitempty"`
	MechInspectorID *uuid.UUID        `json:"mech_inspector_id,omitempty"`
	ElecInspectorID *uuid.UUID        `json:"elec_inspector_id,omitempty"`
	ScheduledBy     *uuid.UUID        `json:"scheduled_by,omitempty"`
	SchedulerRole   *registry.Role    `json:"scheduler_role,omitempty"`
	Notes           *string           `json:"notes,omitempty"`

	Status       Status     `json:"status"`
	AssignmentID *uuid.UUID `json:"inspection_assignment_id,omitempty"`

	ResultVerdict      *verdict.Verdict `json:"result_verdict,omitempty"`
	ResultAssessmentID *uuid.UUID       `json:"result_assessment_id,omitempty"`

	IsOverdue            bool       `json:"is_overdue"`
	OverdueSince         *time.Time `json:"overdue_since,omitempty"`
	OverdueNotifications int        `json:"overdue_notification_count"`

	CancelledBy *uuid.UUID `json:"cancelled_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleCommand carries the schedule form submitted by an engineer or admin.
type ScheduleCommand struct {
	SchedulerID     uuid.UUID         `json:"scheduler_id"`
	TargetDate      time.Time         `json:"-"`
	Type            Type              `json:"followup_type"`
	Location        registry.Location `json:"location"`
	Shift           Shift             `json:"shift"`
	MechInspectorID uuid.UUID         `json:"mech_inspector_id"`
	ElecInspectorID uuid.UUID         `json:"elec_inspector_id"`
	Notes           string            `json:"notes"`
}

// UnmarshalJSON reads target_date as a calendar date.
func (c *ScheduleCommand) UnmarshalJSON(data []byte) error {
	type fields ScheduleCommand
	var wire struct {
		fields
		TargetDate string `json:"target_date"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	date, err := time.Parse(time.DateOnly, wire.TargetDate)
	if err != nil {
		return ErrInvalidDate
	}

	*c = ScheduleCommand(wire.fields)
	c.TargetDate = date
	return nil
}

// newPending builds a follow-up awaiting scheduling with default values.
func newPending(assessmentID, equipmentID uuid.UUID, parent *uuid.UUID, location registry.Location, target, now time.Time) *Followup {
	return &Followup{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		EquipmentID:  equipmentID,
		ParentID:     parent,
		TargetDate:   target,
		Type:         RoutineCheck,
		Location:     location,
		Status:       PendingSchedule,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Schedule applies a validated schedule form and moves the follow-up to scheduled.
func (f *Followup) Schedule(cmd ScheduleCommand, role registry.Role, now time.Time) error {
	if f.Status != PendingSchedule {
		return ErrNotPending
	}
	f.applySchedule(cmd, role)
	f.Status = Scheduled
	f.UpdatedAt = now
	return nil
}

func (f *Followup) applySchedule(cmd ScheduleCommand, role registry.Role) {
	shift := cmd.Shift
	mech, elec, by := cmd.MechInspectorID, cmd.ElecInspectorID, cmd.SchedulerID

	f.TargetDate = cmd.TargetDate
	f.Type = cmd.Type
	f.Location = cmd.Location
	f.Shift = &shift
	f.MechInspectorID = &mech
	f.ElecInspectorID = &elec
	f.ScheduledBy = &by
	f.SchedulerRole = &role
	if cmd.Notes != "" {
		notes := cmd.Notes
		f.Notes = &notes
	}
}

// Materialize links the inspection assignment created for the follow-up.
func (f *Followup) Materialize(assignmentID uuid.UUID, now time.Time) error {
	if err := f.transition(AssignmentCreated); err != nil {
		return err
	}
	f.AssignmentID = &assignmentID
	f.UpdatedAt = now
	return nil
}

// MarkOverdue flags a missed follow-up. overdue_since is recorded only the
// first time; the notification counter grows on every call. It reports
// whether this call newly flagged the record.
func (f *Followup) MarkOverdue(now time.Time) (bool, error) {
	if f.Status != Overdue {
		if err := f.transition(Overdue); err != nil {
			return false, err
		}
	}

	first := f.OverdueSince == nil
	if first {
		since := now
		f.OverdueSince = &since
	}
	f.IsOverdue = true
	f.OverdueNotifications++
	f.UpdatedAt = now
	return first, nil
}

// Complete records the result of the follow-up inspection. A monitor result
// returns the child follow-up that continues the cycle.
func (f *Followup) Complete(
	result verdict.Verdict,
	resultAssessmentID uuid.UUID,
	childTarget time.Time,
	now time.Time,
) (*Followup, error) {
	if !result.Valid() {
		return nil, verdict.ErrInvalid
	}
	if err := f.transition(Completed); err != nil {
		return nil, err
	}

	f.ResultVerdict = &result
	f.ResultAssessmentID = &resultAssessmentID
	f.CompletedAt = &now
	f.UpdatedAt = now

	if result != verdict.Monitor {
		return nil, nil
	}

	parent := f.ID
	return newPending(resultAssessmentID, f.EquipmentID, &parent, f.Location, childTarget, now), nil
}

// Cancel closes the follow-up on behalf of an admin.
func (f *Followup) Cancel(adminID uuid.UUID, now time.Time) error {
	if err := f.transition(Cancelled); err != nil {
		return err
	}
	f.CancelledBy = &adminID
	f.UpdatedAt = now
	return nil
}

// Inspectors returns the assigned inspector IDs.
func (f *Followup) Inspectors() []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if f.MechInspectorID != nil {
		ids = append(ids, *f.MechInspectorID)
	}
	if f.ElecInspectorID != nil {
		ids = append(ids, *f.ElecInspectorID)
	}
	return ids
}

func (f *Followup) transition(to Status) error {
	if !CanTransition(f.Status, to) {
		if f.Status.Terminal() {
			return ErrClosed
		}
		return ErrInvalidTransition
	}
	f.Status = to
	return nil
}
