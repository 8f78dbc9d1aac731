package followups

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/metrics"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/query"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

type repo struct {
	db         *sql.DB
	registry   registry.Store
	publisher  notifications.Publisher
	logger     *slog.Logger
	pagination pagination.Config
	offsetDays int
	clock      Clock

	created      metric.Int64Counter
	materialized metric.Int64Counter
	flagged      metric.Int64Counter
}

// Option customizes the follow-up system.
type Option func(*repo)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *repo) {
		r.clock = NewClock(r.clock.loc, now)
	}
}

// New creates a follow-up repository implementing the System interface.
func New(
	db *sql.DB,
	reg registry.Store,
	publisher notifications.Publisher,
	cfg Config,
	logger *slog.Logger,
	pagination pagination.Config,
	opts ...Option,
) System {
	meter := metrics.Meter("followups")
	r := &repo{
		db:         db,
		registry:   reg,
		publisher:  publisher,
		logger:     logger.With("system", "followups"),
		pagination: pagination,
		offsetDays: cfg.DefaultOffsetDays,
		clock:      NewClock(cfg.Location(), nil),

		created:      metrics.Counter(meter, "followups.created", "Follow-ups created", "{followup}"),
		materialized: metrics.Counter(meter, "followups.materialized", "Follow-ups turned into assignments", "{followup}"),
		flagged:      metrics.Counter(meter, "followups.overdue_flagged", "Overdue follow-up alerts raised", "{alert}"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) defaultTarget() time.Time {
	return r.clock.Today().AddDate(0, 0, r.offsetDays)
}

func (r *repo) CreatePending(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	assessmentID, equipmentID uuid.UUID,
) (*Followup, error) {
	eq, err := r.registry.FindEquipment(ctx, tx, equipmentID)
	if err != nil {
		return nil, err
	}

	f := newPending(assessmentID, equipmentID, nil, eq.Location, r.defaultTarget(), r.clock.Now())
	if err := r.insert(ctx, tx, f); err != nil {
		return nil, err
	}

	batch.Add(pendingEvent(f))
	r.created.Add(ctx, 1)
	r.logger.Info("followup created", "id", f.ID, "assessment_id", assessmentID, "target_date", f.TargetDate)
	return f, nil
}

func (r *repo) ScheduleInline(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	assessmentID, equipmentID uuid.UUID,
	cmd ScheduleCommand,
) (*Followup, error) {
	role, err := r.validate(ctx, tx, &cmd)
	if err != nil {
		return nil, err
	}

	if _, err := r.registry.FindEquipment(ctx, tx, equipmentID); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	f := newPending(assessmentID, equipmentID, nil, cmd.Location, cmd.TargetDate, now)
	if err := f.Schedule(cmd, role, now); err != nil {
		return nil, err
	}
	if err := r.insert(ctx, tx, f); err != nil {
		return nil, err
	}

	batch.Add(scheduledEvent(f))
	r.created.Add(ctx, 1)
	r.logger.Info("followup scheduled inline", "id", f.ID, "assessment_id", assessmentID, "target_date", f.TargetDate)
	return f, nil
}

func (r *repo) CompleteWithResult(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	id uuid.UUID,
	result verdict.Verdict,
	resultAssessmentID uuid.UUID,
) (*Followup, *Followup, error) {
	f, err := r.lock(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	return r.complete(ctx, tx, batch, f, result, resultAssessmentID)
}

func (r *repo) complete(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	f *Followup,
	result verdict.Verdict,
	resultAssessmentID uuid.UUID,
) (*Followup, *Followup, error) {
	child, err := f.Complete(result, resultAssessmentID, r.defaultTarget(), r.clock.Now())
	if err != nil {
		return nil, nil, err
	}
	if err := r.save(ctx, tx, f); err != nil {
		return nil, nil, err
	}

	r.logger.Info("followup completed", "id", f.ID, "result", result)

	if child == nil {
		return f, nil, nil
	}

	eq, err := r.registry.FindEquipment(ctx, tx, f.EquipmentID)
	if err != nil {
		return nil, nil, err
	}
	child.Location = eq.Location

	if err := r.insert(ctx, tx, child); err != nil {
		return nil, nil, err
	}

	batch.Add(pendingEvent(child))
	r.created.Add(ctx, 1)
	r.logger.Info("followup cycle continued", "id", child.ID, "parent_followup_id", f.ID)
	return f, child, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Followup, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	f, err := repository.QueryOne(ctx, r.db, q, args, scanFollowup)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Followup], error) {
	page.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count followups: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFollowup)
	if err != nil {
		return nil, fmt.Errorf("query followups: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) History(ctx context.Context, equipmentID uuid.UUID) ([]Followup, error) {
	if _, err := r.registry.FindEquipment(ctx, r.db, equipmentID); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("EquipmentID", equipmentID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanFollowup)
	if err != nil {
		return nil, fmt.Errorf("query followup history: %w", err)
	}
	return items, nil
}

func (r *repo) SchedulePending(
	ctx context.Context,
	tx repository.DB,
	batch *notifications.Batch,
	id uuid.UUID,
	cmd ScheduleCommand,
) (*Followup, error) {
	f, err := r.lock(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != PendingSchedule {
		return nil, ErrNotPending
	}

	role, err := r.validate(ctx, tx, &cmd)
	if err != nil {
		return nil, err
	}
	if err := f.Schedule(cmd, role, r.clock.Now()); err != nil {
		return nil, err
	}
	if err := r.save(ctx, tx, f); err != nil {
		return nil, err
	}

	batch.Add(scheduledEvent(f))
	r.logger.Info("followup scheduled", "id", f.ID, "target_date", f.TargetDate, "scheduled_by", cmd.SchedulerID)
	return f, nil
}

func (r *repo) Schedule(ctx context.Context, id uuid.UUID, cmd ScheduleCommand) (*Followup, error) {
	var batch notifications.Batch

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Followup, error) {
		return r.SchedulePending(ctx, tx, &batch, id, cmd)
	})
	if err != nil {
		return nil, err
	}

	batch.Publish(ctx, r.publisher)
	return f, nil
}

func (r *repo) Cancel(ctx context.Context, id, adminID uuid.UUID) (*Followup, error) {
	admin, err := r.registry.FindUser(ctx, r.db, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.Has(registry.RoleAdmin) {
		return nil, ErrNotAdmin
	}

	f, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Followup, error) {
		f, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if err := f.Cancel(adminID, r.clock.Now()); err != nil {
			return nil, err
		}
		if err := r.save(ctx, tx, f); err != nil {
			return nil, err
		}
		return f, nil
	})
	if err != nil {
		return nil, err
	}

	if len(f.Inspectors()) > 0 {
		r.publisher.Publish(ctx, cancelledEvent(f))
	}
	r.logger.Info("followup cancelled", "id", f.ID, "admin_id", adminID)
	return f, nil
}

func (r *repo) Complete(ctx context.Context, id, resultAssessmentID uuid.UUID) (*Followup, *Followup, error) {
	var batch notifications.Batch

	type completion struct{ followup, child *Followup }

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (completion, error) {
		result, err := readResult(ctx, tx, resultAssessmentID)
		if err != nil {
			return completion{}, err
		}

		f, err := r.lock(ctx, tx, id)
		if err != nil {
			return completion{}, err
		}
		if !result.covers(f) {
			return completion{}, ErrResultMismatch
		}

		f, child, err := r.complete(ctx, tx, &batch, f, result.final, resultAssessmentID)
		return completion{f, child}, err
	})
	if err != nil {
		return nil, nil, err
	}

	batch.Publish(ctx, r.publisher)
	return c.followup, c.child, nil
}

func (r *repo) AvailableInspectors(
	ctx context.Context,
	date time.Time,
	spec *registry.Specialization,
) ([]registry.User, error) {
	return r.registry.AvailableInspectors(ctx, r.db, spec, Date(date))
}

// validate checks a schedule form and returns the scheduler's role. An empty
// shift defaults to day.
func (r *repo) validate(ctx context.Context, q repository.DB, cmd *ScheduleCommand) (registry.Role, error) {
	if cmd.Shift == "" {
		cmd.Shift = DayShift
	}
	cmd.TargetDate = Date(cmd.TargetDate)

	switch {
	case !cmd.TargetDate.After(r.clock.Today()):
		return "", ErrPastDate
	case !cmd.Type.Valid():
		return "", ErrInvalidType
	case !cmd.Location.Valid():
		return "", ErrInvalidLocation
	case !cmd.Shift.Valid():
		return "", ErrInvalidShift
	case cmd.MechInspectorID == uuid.Nil || cmd.ElecInspectorID == uuid.Nil:
		return "", ErrInspectorRequired
	}

	scheduler, err := r.registry.FindUser(ctx, q, cmd.SchedulerID)
	if err != nil {
		return "", err
	}
	if !scheduler.Has(registry.RoleEngineer) && !scheduler.Has(registry.RoleAdmin) {
		return "", ErrNotScheduler
	}

	if err := r.checkInspector(ctx, q, cmd.MechInspectorID, registry.Mechanical, cmd.TargetDate); err != nil {
		return "", err
	}
	if err := r.checkInspector(ctx, q, cmd.ElecInspectorID, registry.Electrical, cmd.TargetDate); err != nil {
		return "", err
	}

	return scheduler.Role, nil
}

func (r *repo) checkInspector(
	ctx context.Context,
	q repository.DB,
	id uuid.UUID,
	want registry.Specialization,
	date time.Time,
) error {
	u, err := r.registry.FindUser(ctx, q, id)
	if err != nil {
		return err
	}
	if !u.Has(registry.RoleInspector) || u.Specialization == nil || *u.Specialization != want {
		return fmt.Errorf("%w: %s is not an active %s inspector", ErrInspectorMismatch, id, want)
	}

	onLeave, err := r.registry.OnLeave(ctx, q, id, date)
	if err != nil {
		return err
	}
	if onLeave {
		return fmt.Errorf("%w: %s on %s", ErrInspectorOnLeave, id, date.Format(time.DateOnly))
	}
	return nil
}

func (r *repo) lock(ctx context.Context, q repository.DB, id uuid.UUID) (*Followup, error) {
	f, err := repository.QueryOne(ctx, q, selectForUpdate, []any{id}, scanFollowup)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &f, nil
}

func (r *repo) insert(ctx context.Context, q repository.DB, f *Followup) error {
	if _, err := q.ExecContext(ctx, insertSQL, f.args()...); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) save(ctx context.Context, q repository.DB, f *Followup) error {
	if err := repository.ExecExpectOne(ctx, q, updateSQL, f.args()...); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

// finalStatus reads the final verdict of a finalized assessment.
// assessmentResult is the finalized outcome of an assessment and the
// inspection it belongs to.
type assessmentResult struct {
	final        verdict.Verdict
	assignmentID uuid.UUID
	equipmentID  uuid.UUID
}

// covers reports whether the result belongs to f's inspection. Follow-ups
// without an assignment yet only need to match on equipment.
func (res assessmentResult) covers(f *Followup) bool {
	if f.AssignmentID != nil {
		return res.assignmentID == *f.AssignmentID
	}
	return res.equipmentID == f.EquipmentID
}

func readResult(ctx context.Context, q repository.DB, assessmentID uuid.UUID) (assessmentResult, error) {
	var res assessmentResult
	err := q.QueryRowContext(ctx,
		`SELECT final_status, assignment_id, equipment_id FROM assessments WHERE id = $1 AND finalized_at IS NOT NULL`,
		assessmentID,
	).Scan(&res.final, &res.assignmentID, &res.equipmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrResultNotFinal
	}
	if err != nil {
		return res, fmt.Errorf("read assessment result: %w", err)
	}
	return res, nil
}
