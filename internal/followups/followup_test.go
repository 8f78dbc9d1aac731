package followups

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
)

var (
	today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now   = today.Add(9 * time.Hour)
)

func pending() *Followup {
	return newPending(uuid.New(), uuid.New(), nil, registry.East, today.AddDate(0, 0, 7), now)
}

func scheduleCmd() ScheduleCommand {
	return ScheduleCommand{
		SchedulerID:     uuid.New(),
		TargetDate:      today.AddDate(0, 0, 3),
		Type:            DetailedInspection,
		Location:        registry.West,
		Shift:           NightShift,
		MechInspectorID: uuid.New(),
		ElecInspectorID: uuid.New(),
		Notes:           "check hoist brake lining",
	}
}

func TestScheduleFromPending(t *testing.T) {
	f := pending()
	cmd := scheduleCmd()

	require.NoError(t, f.Schedule(cmd, registry.RoleEngineer, now))

	assert.Equal(t, Scheduled, f.Status)
	assert.Equal(t, cmd.TargetDate, f.TargetDate)
	assert.Equal(t, registry.West, f.Location)
	assert.Equal(t, NightShift, *f.Shift)
	assert.Equal(t, registry.RoleEngineer, *f.SchedulerRole)
	assert.ElementsMatch(t, []uuid.UUID{cmd.MechInspectorID, cmd.ElecInspectorID}, f.Inspectors())
}

func TestScheduleTwiceIsBusinessState(t *testing.T) {
	f := pending()
	require.NoError(t, f.Schedule(scheduleCmd(), registry.RoleAdmin, now))

	err := f.Schedule(scheduleCmd(), registry.RoleAdmin, now)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.ErrorIs(t, err, failure.ErrBusinessState)
}

func TestMarkOverdueTwiceKeepsSince(t *testing.T) {
	f := pending()
	require.NoError(t, f.Schedule(scheduleCmd(), registry.RoleEngineer, now))

	first, err := f.MarkOverdue(now)
	require.NoError(t, err)
	assert.True(t, first)
	since := *f.OverdueSince

	again, err := f.MarkOverdue(now.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.False(t, again)

	assert.Equal(t, Overdue, f.Status)
	assert.True(t, f.IsOverdue)
	assert.Equal(t, since, *f.OverdueSince)
	assert.Equal(t, 2, f.OverdueNotifications)
}

func TestMarkOverdueRequiresSchedule(t *testing.T) {
	f := pending()
	_, err := f.MarkOverdue(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, PendingSchedule, f.Status)
	assert.Zero(t, f.OverdueNotifications)
}

func TestCompleteWithMonitorSpawnsChild(t *testing.T) {
	f := pending()
	require.NoError(t, f.Schedule(scheduleCmd(), registry.RoleEngineer, now))
	require.NoError(t, f.Materialize(uuid.New(), now))

	result := uuid.New()
	child, err := f.Complete(verdict.Monitor, result, today.AddDate(0, 0, 7), now)
	require.NoError(t, err)

	assert.Equal(t, Completed, f.Status)
	assert.Equal(t, verdict.Monitor, *f.ResultVerdict)
	assert.Equal(t, result, *f.ResultAssessmentID)

	require.NotNil(t, child)
	assert.Equal(t, PendingSchedule, child.Status)
	assert.Equal(t, f.ID, *child.ParentID)
	assert.Equal(t, result, child.AssessmentID)
	assert.Equal(t, f.EquipmentID, child.EquipmentID)
	assert.Equal(t, RoutineCheck, child.Type)
}

func TestCompleteEndsCycle(t *testing.T) {
	for _, v := range []verdict.Verdict{verdict.Operational, verdict.Stop} {
		t.Run(string(v), func(t *testing.T) {
			f := pending()
			require.NoError(t, f.Schedule(scheduleCmd(), registry.RoleEngineer, now))
			require.NoError(t, f.Materialize(uuid.New(), now))

			child, err := f.Complete(v, uuid.New(), today, now)
			require.NoError(t, err)
			assert.Nil(t, child)
			assert.Equal(t, Completed, f.Status)
		})
	}
}

func TestCompleteOverdueFollowup(t *testing.T) {
	f := pending()
	require.NoError(t, f.Schedule(scheduleCmd(), registry.RoleEngineer, now))
	require.NoError(t, f.Materialize(uuid.New(), now))
	_, err := f.MarkOverdue(now)
	require.NoError(t, err)

	_, err = f.Complete(verdict.Operational, uuid.New(), today, now)
	require.NoError(t, err)
	assert.Equal(t, Completed, f.Status)
}

func TestCancel(t *testing.T) {
	admin := uuid.New()

	f := pending()
	require.NoError(t, f.Cancel(admin, now))
	assert.Equal(t, Cancelled, f.Status)
	assert.Equal(t, admin, *f.CancelledBy)

	assert.ErrorIs(t, f.Cancel(admin, now), ErrClosed)

	done := pending()
	require.NoError(t, done.Schedule(scheduleCmd(), registry.RoleEngineer, now))
	require.NoError(t, done.Materialize(uuid.New(), now))
	_, err := done.Complete(verdict.Operational, uuid.New(), today, now)
	require.NoError(t, err)

	err = done.Cancel(admin, now)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, err, failure.ErrBusinessState)
}

func TestScheduleCommandDecodesDate(t *testing.T) {
	var cmd ScheduleCommand
	err := json.Unmarshal([]byte(`{
		"scheduler_id": "9b2f61a4-8c39-4d53-9d8e-0e9a3c7f2a11",
		"target_date": "2026-03-14",
		"followup_type": "operational_test",
		"location": "east",
		"shift": "day"
	}`), &cmd)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), cmd.TargetDate)
	assert.Equal(t, OperationalTest, cmd.Type)
	assert.Equal(t, registry.East, cmd.Location)

	err = json.Unmarshal([]byte(`{"target_date": "14/03/2026"}`), &cmd)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestClockToday(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	late := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)

	c := NewClock(riyadh, func() time.Time { return late })
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), c.Today())
}

var statusRank = map[Status]int{
	PendingSchedule:   0,
	Scheduled:         1,
	AssignmentCreated: 2,
	Overdue:           3,
	Completed:         4,
	Cancelled:         4,
}

func genStatus() gopter.Gen {
	return gen.OneConstOf(
		PendingSchedule, Scheduled, AssignmentCreated, Completed, Overdue, Cancelled,
	)
}

func TestTransitionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("transitions only move forward", prop.ForAll(
		func(from, to Status) bool {
			if !CanTransition(from, to) {
				return true
			}
			return statusRank[to] > statusRank[from]
		},
		genStatus(), genStatus(),
	))

	properties.Property("terminal statuses have no way out", prop.ForAll(
		func(from, to Status) bool {
			return !from.Terminal() || !CanTransition(from, to)
		},
		genStatus(), genStatus(),
	))

	properties.Property("overdue is reached only from scheduled or assignment_created", prop.ForAll(
		func(from Status) bool {
			if !CanTransition(from, Overdue) {
				return true
			}
			return from == Scheduled || from == AssignmentCreated
		},
		genStatus(),
	))

	properties.Property("a random walk never leaves a terminal status", prop.ForAll(
		func(steps []Status) bool {
			f := pending()
			for _, to := range steps {
				before := f.Status
				err := f.transition(to)
				if before.Terminal() && (err == nil || f.Status != before) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genStatus()),
	))

	properties.TestingRun(t)
}
