package assessments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// fakeRegistry keeps registry state in memory and ignores the transaction.
type fakeRegistry struct {
	registry.Store

	mu          sync.Mutex
	equipment   map[uuid.UUID]*registry.Equipment
	assignments map[uuid.UUID]*registry.Assignment
	users       map[uuid.UUID]*registry.User
	points      map[[2]uuid.UUID]int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		equipment:   map[uuid.UUID]*registry.Equipment{},
		assignments: map[uuid.UUID]*registry.Assignment{},
		users:       map[uuid.UUID]*registry.User{},
		points:      map[[2]uuid.UUID]int{},
	}
}

func (f *fakeRegistry) seed(a *Assessment, status registry.EquipmentStatus, source registry.JobRef) {
	f.equipment[a.EquipmentID] = &registry.Equipment{
		ID:       a.EquipmentID,
		Name:     "STS-04",
		Status:   status,
		Location: registry.East,
	}
	f.assignments[a.AssignmentID] = &registry.Assignment{
		ID:                    a.AssignmentID,
		EquipmentID:           a.EquipmentID,
		MechInspectorID:       a.MechInspectorID,
		ElecInspectorID:       a.ElecInspectorID,
		Status:                registry.AssignmentBothComplete,
		MechChecklistComplete: true,
		ElecChecklistComplete: true,
		Source:                source,
	}
}

func (f *fakeRegistry) addUser(role registry.Role) uuid.UUID {
	id := uuid.New()
	f.users[id] = &registry.User{ID: id, Name: string(role), Role: role, Active: true}
	return id
}

func (f *fakeRegistry) FindEquipment(_ context.Context, _ repository.DB, id uuid.UUID) (*registry.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eq, ok := f.equipment[id]
	if !ok {
		return nil, registry.ErrEquipmentNotFound
	}
	cp := *eq
	return &cp, nil
}

func (f *fakeRegistry) StopEquipment(_ context.Context, _ repository.DB, id, assessmentID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	eq, ok := f.equipment[id]
	if !ok {
		return registry.ErrEquipmentNotFound
	}
	eq.Status = registry.EquipmentStopped
	eq.StoppedByAssessmentID = &assessmentID
	return nil
}

func (f *fakeRegistry) RestoreEquipment(_ context.Context, _ repository.DB, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	eq, ok := f.equipment[id]
	if !ok {
		return false, registry.ErrEquipmentNotFound
	}
	if eq.Status == registry.EquipmentStopped {
		return false, nil
	}
	eq.Status = registry.EquipmentActive
	return true, nil
}

func (f *fakeRegistry) FindAssignment(_ context.Context, _ repository.DB, id uuid.UUID) (*registry.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asg, ok := f.assignments[id]
	if !ok {
		return nil, registry.ErrAssignmentNotFound
	}
	cp := *asg
	return &cp, nil
}

func (f *fakeRegistry) CompleteAssignment(_ context.Context, _ repository.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	asg, ok := f.assignments[id]
	if !ok {
		return registry.ErrAssignmentNotFound
	}
	asg.Status = registry.AssignmentCompleted
	return nil
}

func (f *fakeRegistry) FindUser(_ context.Context, _ repository.DB, id uuid.UUID) (*registry.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, registry.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRegistry) AwardPoints(_ context.Context, _ repository.DB, assessmentID, userID uuid.UUID, points int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]uuid.UUID{assessmentID, userID}
	if _, ok := f.points[key]; ok {
		return false, nil
	}
	f.points[key] = points
	return true, nil
}

// fakeFollowups records the cycle calls made by the applicator.
type fakeFollowups struct {
	followups.System

	pending   []uuid.UUID
	inline    []followups.ScheduleCommand
	completed []uuid.UUID
	scheduled []uuid.UUID
	child     bool
	// closed holds the terminal status of source follow-ups, if any.
	closed followups.Status
}

func (f *fakeFollowups) CreatePending(
	_ context.Context,
	_ repository.DB,
	_ *notifications.Batch,
	assessmentID, equipmentID uuid.UUID,
) (*followups.Followup, error) {
	f.pending = append(f.pending, assessmentID)
	return &followups.Followup{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		EquipmentID:  equipmentID,
		Status:       followups.PendingSchedule,
	}, nil
}

func (f *fakeFollowups) ScheduleInline(
	_ context.Context,
	_ repository.DB,
	_ *notifications.Batch,
	assessmentID, equipmentID uuid.UUID,
	cmd followups.ScheduleCommand,
) (*followups.Followup, error) {
	f.inline = append(f.inline, cmd)
	return &followups.Followup{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		EquipmentID:  equipmentID,
		TargetDate:   cmd.TargetDate,
		Status:       followups.Scheduled,
	}, nil
}

func (f *fakeFollowups) SchedulePending(
	_ context.Context,
	_ repository.DB,
	_ *notifications.Batch,
	id uuid.UUID,
	cmd followups.ScheduleCommand,
) (*followups.Followup, error) {
	f.scheduled = append(f.scheduled, id)
	return &followups.Followup{ID: id, TargetDate: cmd.TargetDate, Status: followups.Scheduled}, nil
}

func (f *fakeFollowups) CompleteWithResult(
	_ context.Context,
	_ repository.DB,
	_ *notifications.Batch,
	id uuid.UUID,
	result verdict.Verdict,
	resultAssessmentID uuid.UUID,
) (*followups.Followup, *followups.Followup, error) {
	if f.closed != "" {
		source := &followups.Followup{ID: id, Status: f.closed}
		if _, err := source.Complete(result, resultAssessmentID, now, now); err != nil {
			return nil, nil, err
		}
	}
	f.completed = append(f.completed, id)
	done := &followups.Followup{
		ID:                 id,
		Status:             followups.Completed,
		ResultVerdict:      &result,
		ResultAssessmentID: &resultAssessmentID,
	}
	if result != verdict.Monitor || !f.child {
		return done, nil, nil
	}
	return done, &followups.Followup{ID: uuid.New(), ParentID: &id, Status: followups.PendingSchedule}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recorder) Publish(_ context.Context, e notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []notifications.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notifications.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func futureSchedule() followups.ScheduleCommand {
	return followups.ScheduleCommand{
		TargetDate:      now.Truncate(24*time.Hour).AddDate(0, 0, 5),
		Type:            followups.RoutineCheck,
		Location:        registry.East,
		Shift:           followups.DayShift,
		MechInspectorID: uuid.New(),
		ElecInspectorID: uuid.New(),
	}
}
