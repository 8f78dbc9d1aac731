package followups

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/failure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
)

type recorder struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recorder) Publish(_ context.Context, e notifications.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type fixture struct {
	sys   *repo
	db    *sql.DB
	mock  sqlmock.Sqlmock
	pub   *recorder
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	current := now
	fx := &fixture{db: db, mock: mock, pub: &recorder{}, clock: &current}

	cfg := Config{}
	require.NoError(t, cfg.Finalize(nil))

	fx.sys = New(
		db,
		registry.New(logger),
		fx.pub,
		cfg,
		logger,
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		WithClock(func() time.Time { return *fx.clock }),
	).(*repo)
	return fx
}

func followupRow(t *testing.T, f *Followup) *sqlmock.Rows {
	t.Helper()
	values := make([]driver.Value, 0, len(projection.ColumnList()))
	for _, arg := range f.args() {
		v, err := driver.DefaultParameterConverter.ConvertValue(arg)
		require.NoError(t, err)
		values = append(values, v)
	}
	return sqlmock.NewRows(projection.ColumnList()).AddRow(values...)
}

// updateArgs matches the UPDATE statement arguments, checking the overdue
// columns exactly and accepting anything elsewhere.
func updateArgs(status Status, since time.Time, count int) []driver.Value {
	args := make([]driver.Value, len(projection.ColumnList()))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[13] = string(status)
	args[17] = true
	args[18] = since
	args[19] = int64(count)
	return args
}

func scheduledFollowup(target time.Time) *Followup {
	f := pending()
	cmd := scheduleCmd()
	cmd.TargetDate = target
	if err := f.Schedule(cmd, registry.RoleEngineer, now); err != nil {
		panic(err)
	}
	return f
}

func TestCheckOverdueTwice(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today.AddDate(0, 0, -2))
	firstRun := *fx.clock

	fx.mock.ExpectQuery(`SELECT id FROM followups WHERE status = ANY\(\$1\) AND target_date < \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(f.ID.String()))
	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectExec(`UPDATE followups SET`).
		WithArgs(updateArgs(Overdue, firstRun, 1)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	fx.mock.ExpectCommit()

	result, err := fx.sys.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 1, Processed: 1}, result)

	// The stored record after the first run.
	_, err = f.MarkOverdue(firstRun)
	require.NoError(t, err)
	*fx.clock = firstRun.Add(time.Hour)

	fx.mock.ExpectQuery(`SELECT id FROM followups WHERE status = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(f.ID.String()))
	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectExec(`UPDATE followups SET`).
		WithArgs(updateArgs(Overdue, firstRun, 2)...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	fx.mock.ExpectCommit()

	result, err = fx.sys.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 1, Processed: 1}, result)

	require.NoError(t, fx.mock.ExpectationsWereMet())
	require.Len(t, fx.pub.events, 2)
	for _, e := range fx.pub.events {
		assert.Equal(t, notifications.FollowupOverdue, e.Type)
		assert.Equal(t, notifications.PriorityCritical, e.Priority)
		assert.Equal(t, registry.FollowupRef{ID: f.ID}, e.Related)
	}
}

func TestCheckOverdueIsolatesFailures(t *testing.T) {
	fx := newFixture(t)
	broken := uuid.New()
	f := scheduledFollowup(today.AddDate(0, 0, -1))

	fx.mock.ExpectQuery(`SELECT id FROM followups`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(broken.String()).
			AddRow(f.ID.String()))

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(broken).WillReturnError(errors.New("connection reset"))
	fx.mock.ExpectRollback()

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectExec(`UPDATE followups SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	fx.mock.ExpectCommit()

	result, err := fx.sys.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 2, Processed: 1, Failed: 1}, result)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestCheckOverdueSkipsClosedRecord(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today.AddDate(0, 0, -1))
	require.NoError(t, f.Cancel(uuid.New(), now))

	fx.mock.ExpectQuery(`SELECT id FROM followups`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(f.ID.String()))
	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectCommit()

	result, err := fx.sys.CheckOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 1}, result)
	assert.Empty(t, fx.pub.events)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func assignmentRow(a registry.NewAssignment, id uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "equipment_id", "mech_inspector_id", "elec_inspector_id", "status",
		"mech_checklist_complete", "elec_checklist_complete", "source_kind", "source_id",
		"target_date", "shift", "created_at", "completed_at",
	}).AddRow(
		id.String(), a.EquipmentID.String(), a.MechInspectorID.String(), a.ElecInspectorID.String(), "assigned",
		false, false, "followup", a.Source.RefID().String(),
		a.TargetDate, a.Shift, now, nil,
	)
}

func TestMaterializeDueToday(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today)
	assignmentID := uuid.New()

	fx.mock.ExpectQuery(`SELECT id FROM followups WHERE status = \$1 AND target_date = \$2`).
		WithArgs("scheduled", today).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(f.ID.String()))
	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectQuery(`INSERT INTO inspection_assignments`).
		WillReturnRows(assignmentRow(registry.NewAssignment{
			EquipmentID:     f.EquipmentID,
			MechInspectorID: *f.MechInspectorID,
			ElecInspectorID: *f.ElecInspectorID,
			TargetDate:      today,
			Shift:           "night",
			Source:          registry.FollowupRef{ID: f.ID},
		}, assignmentID))
	fx.mock.ExpectExec(`UPDATE followups SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	fx.mock.ExpectCommit()

	result, err := fx.sys.MaterializeDueToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 1, Processed: 1}, result)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	require.Len(t, fx.pub.events, 1)
	e := fx.pub.events[0]
	assert.Equal(t, notifications.FollowupAssigned, e.Type)
	assert.Equal(t, registry.InspectionRef{ID: assignmentID}, e.Related)
	assert.ElementsMatch(t, f.Inspectors(), e.Users)
}

func TestMaterializeSkipsHandledRecord(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today)
	require.NoError(t, f.Materialize(uuid.New(), now))

	fx.mock.ExpectQuery(`SELECT id FROM followups`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(f.ID.String()))
	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectCommit()

	result, err := fx.sys.MaterializeDueToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Examined: 1}, result)
	assert.Empty(t, fx.pub.events)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestScheduleRejectsToday(t *testing.T) {
	fx := newFixture(t)
	f := pending()
	cmd := scheduleCmd()
	cmd.TargetDate = today

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectRollback()

	_, err := fx.sys.Schedule(context.Background(), f.ID, cmd)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.EqualError(t, err, "validation failed: date must be in the future")
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestScheduleAlreadyScheduled(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today.AddDate(0, 0, 2))

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectRollback()

	_, err := fx.sys.Schedule(context.Background(), f.ID, scheduleCmd())
	assert.ErrorIs(t, err, ErrNotPending)
}

func userRow(id uuid.UUID, role registry.Role, spec any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "role", "specialization", "active"}).
		AddRow(id.String(), "user", string(role), spec, true)
}

func TestScheduleRejectsWrongSpecialization(t *testing.T) {
	fx := newFixture(t)
	f := pending()
	cmd := scheduleCmd()

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectQuery(`FROM users u WHERE u.id = \$1`).
		WithArgs(cmd.SchedulerID).
		WillReturnRows(userRow(cmd.SchedulerID, registry.RoleEngineer, nil))
	fx.mock.ExpectQuery(`FROM users u WHERE u.id = \$1`).
		WithArgs(cmd.MechInspectorID).
		WillReturnRows(userRow(cmd.MechInspectorID, registry.RoleInspector, "electrical"))
	fx.mock.ExpectRollback()

	_, err := fx.sys.Schedule(context.Background(), f.ID, cmd)
	assert.ErrorIs(t, err, ErrInspectorMismatch)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestScheduleByInspectorIsForbidden(t *testing.T) {
	fx := newFixture(t)
	f := pending()
	cmd := scheduleCmd()

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectQuery(`FROM users u WHERE u.id = \$1`).
		WillReturnRows(userRow(cmd.SchedulerID, registry.RoleInspector, "mechanical"))
	fx.mock.ExpectRollback()

	_, err := fx.sys.Schedule(context.Background(), f.ID, cmd)
	assert.ErrorIs(t, err, ErrNotScheduler)
}

func TestCancelRequiresAdmin(t *testing.T) {
	fx := newFixture(t)
	engineer := uuid.New()

	fx.mock.ExpectQuery(`FROM users u WHERE u.id = \$1`).
		WithArgs(engineer).
		WillReturnRows(userRow(engineer, registry.RoleEngineer, nil))

	_, err := fx.sys.Cancel(context.Background(), uuid.New(), engineer)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestCompleteRequiresFinalizedResult(t *testing.T) {
	fx := newFixture(t)

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`SELECT final_status, assignment_id, equipment_id FROM assessments`).
		WillReturnRows(sqlmock.NewRows([]string{"final_status", "assignment_id", "equipment_id"}))
	fx.mock.ExpectRollback()

	_, _, err := fx.sys.Complete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrResultNotFinal)
}

func resultRow(final verdict.Verdict, assignmentID, equipmentID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"final_status", "assignment_id", "equipment_id"}).
		AddRow(string(final), assignmentID.String(), equipmentID.String())
}

func TestCompleteWithResult(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today)
	assignmentID := uuid.New()
	require.NoError(t, f.Materialize(assignmentID, now))
	resultID := uuid.New()

	fx.mock.ExpectBegin()
	fx.mock.ExpectQuery(`SELECT final_status, assignment_id, equipment_id FROM assessments WHERE id = \$1 AND finalized_at IS NOT NULL`).
		WithArgs(resultID).
		WillReturnRows(resultRow(verdict.Operational, assignmentID, uuid.New()))
	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))
	fx.mock.ExpectExec(`UPDATE followups SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	fx.mock.ExpectCommit()

	done, child, err := fx.sys.Complete(context.Background(), f.ID, resultID)
	require.NoError(t, err)
	require.NoError(t, fx.mock.ExpectationsWereMet())

	assert.Nil(t, child)
	assert.Equal(t, Completed, done.Status)
	assert.Equal(t, resultID, *done.ResultAssessmentID)
	assert.Equal(t, verdict.Operational, *done.ResultVerdict)
}

func TestCompleteRejectsUnrelatedResult(t *testing.T) {
	materialized := scheduledFollowup(today)
	require.NoError(t, materialized.Materialize(uuid.New(), now))
	unassigned := scheduledFollowup(today.AddDate(0, 0, 2))

	tests := []struct {
		name   string
		f      *Followup
		result func(f *Followup) *sqlmock.Rows
	}{
		{"other assignment", materialized, func(f *Followup) *sqlmock.Rows {
			return resultRow(verdict.Stop, uuid.New(), f.EquipmentID)
		}},
		{"other equipment", unassigned, func(f *Followup) *sqlmock.Rows {
			return resultRow(verdict.Stop, uuid.New(), uuid.New())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)

			fx.mock.ExpectBegin()
			fx.mock.ExpectQuery(`SELECT final_status, assignment_id, equipment_id FROM assessments`).
				WillReturnRows(tt.result(tt.f))
			fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(tt.f.ID).WillReturnRows(followupRow(t, tt.f))
			fx.mock.ExpectRollback()

			_, _, err := fx.sys.Complete(context.Background(), tt.f.ID, uuid.New())
			assert.ErrorIs(t, err, ErrResultMismatch)
			assert.ErrorIs(t, err, failure.ErrValidation)
			assert.NoError(t, fx.mock.ExpectationsWereMet())
		})
	}
}

func TestCompleteWithResultOnCancelledFollowup(t *testing.T) {
	fx := newFixture(t)
	f := scheduledFollowup(today)
	require.NoError(t, f.Materialize(uuid.New(), now))
	require.NoError(t, f.Cancel(uuid.New(), now))

	fx.mock.ExpectQuery(`FOR UPDATE`).WithArgs(f.ID).WillReturnRows(followupRow(t, f))

	var batch notifications.Batch
	_, _, err := fx.sys.CompleteWithResult(context.Background(), fx.db, &batch, f.ID, verdict.Stop, uuid.New())

	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, batch.Events())
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func equipmentRow(id uuid.UUID, location registry.Location) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "status", "location", "stopped_by_assessment_id", "updated_at"}).
		AddRow(id.String(), "STS crane 4", "active", string(location), nil, now)
}

func TestCreatePendingUsesEquipmentDefaults(t *testing.T) {
	fx := newFixture(t)
	assessmentID, equipmentID := uuid.New(), uuid.New()

	fx.mock.ExpectQuery(`FROM equipment WHERE id = \$1`).
		WithArgs(equipmentID).
		WillReturnRows(equipmentRow(equipmentID, registry.West))
	fx.mock.ExpectExec(`INSERT INTO followups`).WillReturnResult(sqlmock.NewResult(0, 1))

	var batch notifications.Batch
	f, err := fx.sys.CreatePending(context.Background(), fx.db, &batch, assessmentID, equipmentID)
	require.NoError(t, err)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	assert.Equal(t, PendingSchedule, f.Status)
	assert.Equal(t, RoutineCheck, f.Type)
	assert.Equal(t, registry.West, f.Location)
	assert.Equal(t, today.AddDate(0, 0, 7), f.TargetDate)
	assert.Nil(t, f.ParentID)

	require.Len(t, batch.Events(), 1)
	assert.Equal(t, notifications.FollowupPending, batch.Events()[0].Type)
	assert.Empty(t, fx.pub.events, "events wait for the caller's commit")
}

func TestHistoryUnknownEquipment(t *testing.T) {
	fx := newFixture(t)
	equipmentID := uuid.New()

	fx.mock.ExpectQuery(`FROM equipment WHERE id = \$1`).
		WithArgs(equipmentID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := fx.sys.History(context.Background(), equipmentID)
	assert.ErrorIs(t, err, registry.ErrEquipmentNotFound)
}

func TestHistoryListsCycle(t *testing.T) {
	fx := newFixture(t)
	first := pending()
	require.NoError(t, first.Cancel(uuid.New(), now))
	second := pending()
	second.EquipmentID = first.EquipmentID
	second.ParentID = &first.ID

	rows := followupRow(t, first)
	values := make([]driver.Value, 0, len(projection.ColumnList()))
	for _, arg := range second.args() {
		v, err := driver.DefaultParameterConverter.ConvertValue(arg)
		require.NoError(t, err)
		values = append(values, v)
	}
	rows.AddRow(values...)

	fx.mock.ExpectQuery(`FROM equipment WHERE id = \$1`).
		WillReturnRows(equipmentRow(first.EquipmentID, registry.East))
	fx.mock.ExpectQuery(`WHERE f.equipment_id = \$1 ORDER BY f.created_at ASC`).
		WithArgs(first.EquipmentID).
		WillReturnRows(rows)

	items, err := fx.sys.History(context.Background(), first.EquipmentID)
	require.NoError(t, err)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	require.Len(t, items, 2)
	assert.Equal(t, Cancelled, items[0].Status)
	assert.Equal(t, first.ID, *items[1].ParentID)
}
