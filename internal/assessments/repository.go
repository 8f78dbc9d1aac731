package assessments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/verdict"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/metrics"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/query"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

type repo struct {
	db         *sql.DB
	registry   registry.Store
	applicator *Applicator
	publisher  notifications.Publisher
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time

	verdicts      metric.Int64Counter
	escalations   metric.Int64Counter
	finalizations metric.Int64Counter
}

// Option customizes the assessment system.
type Option func(*repo)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *repo) { r.now = now }
}

// New creates an assessment repository implementing the System interface.
func New(
	db *sql.DB,
	reg registry.Store,
	fs followups.System,
	publisher notifications.Publisher,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	opts ...Option,
) System {
	meter := metrics.Meter("assessments")
	r := &repo{
		db:         db,
		registry:   reg,
		applicator: NewApplicator(reg, fs, logger),
		publisher:  publisher,
		archive:    archive,
		logger:     logger.With("system", "assessments"),
		pagination: pagination,
		now:        time.Now,

		verdicts:      metrics.Counter(meter, "assessments.verdicts", "Verdicts recorded", "{verdict}"),
		escalations:   metrics.Counter(meter, "assessments.escalations", "Assessments escalated", "{escalation}"),
		finalizations: metrics.Counter(meter, "assessments.finalized", "Assessments finalized", "{assessment}"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, assignmentID uuid.UUID) (*Assessment, error) {
	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Assessment, error) {
		asg, err := r.registry.FindAssignment(ctx, tx, assignmentID)
		if err != nil {
			return nil, err
		}

		existing, err := r.findByAssignment(ctx, tx, assignmentID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		if !asg.ChecklistStarted() {
			return nil, ErrChecklistNotStarted
		}

		if _, err := tx.ExecContext(ctx, insertSQL,
			uuid.New(), asg.EquipmentID, asg.ID, asg.MechInspectorID, asg.ElecInspectorID,
		); err != nil {
			return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.findByAssignment(ctx, tx, assignmentID)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("assessment opened", "id", a.ID, "assignment_id", assignmentID)
	return a, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) SubmitVerdict(ctx context.Context, id uuid.UUID, cmd VerdictCommand) (*Result, error) {
	res, err := r.mutate(ctx, id, nil, func(a *Assessment, now time.Time) (Step, error) {
		return a.SubmitVerdict(cmd.InspectorID, cmd.Verdict, cmd.Justification, now)
	})
	if err != nil {
		return nil, err
	}

	r.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", "inspector"),
		attribute.String("verdict", string(cmd.Verdict)),
	))
	return res, nil
}

func (r *repo) SubmitEngineerVerdict(ctx context.Context, id uuid.UUID, cmd EngineerCommand) (*Result, error) {
	if err := r.requireRole(ctx, cmd.EngineerID, registry.RoleEngineer, ErrNotEngineer); err != nil {
		return nil, err
	}

	if cmd.Followup != nil {
		cmd.Followup.SchedulerID = cmd.EngineerID
	}

	res, err := r.mutate(ctx, id, cmd.Followup, func(a *Assessment, now time.Time) (Step, error) {
		return a.SubmitEngineerVerdict(cmd.EngineerID, cmd.Verdict, cmd.Notes, now)
	})
	if err != nil {
		return nil, err
	}

	r.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", "engineer"),
		attribute.String("verdict", string(cmd.Verdict)),
	))
	return res, nil
}

func (r *repo) AdminResolve(ctx context.Context, id uuid.UUID, cmd AdminCommand) (*Result, error) {
	if err := r.requireRole(ctx, cmd.AdminID, registry.RoleAdmin, ErrNotAdmin); err != nil {
		return nil, err
	}

	if cmd.Followup != nil {
		cmd.Followup.SchedulerID = cmd.AdminID
	}

	res, err := r.mutate(ctx, id, cmd.Followup, func(a *Assessment, now time.Time) (Step, error) {
		return a.AdminResolve(cmd.AdminID, cmd.Decision, cmd.Notes, now)
	})
	if err != nil {
		return nil, err
	}

	r.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tier", "admin"),
		attribute.String("verdict", string(cmd.Decision)),
	))
	return res, nil
}

func (r *repo) ScheduleFollowupInline(ctx context.Context, id uuid.UUID, cmd InlineScheduleCommand) (*Result, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Finalized() {
		return nil, ErrFinalized
	}

	schedule := cmd.Followup
	switch a.EscalationLevel {
	case LevelEngineer:
		return r.SubmitEngineerVerdict(ctx, id, EngineerCommand{
			EngineerID: cmd.ActorID,
			Verdict:    verdict.Monitor,
			Notes:      cmd.Notes,
			Followup:   &schedule,
		})
	case LevelAdmin:
		return r.AdminResolve(ctx, id, AdminCommand{
			AdminID:  cmd.ActorID,
			Decision: verdict.Monitor,
			Notes:    cmd.Notes,
			Followup: &schedule,
		})
	}
	return nil, ErrNotEscalated
}

func (r *repo) PendingAssessments(
	ctx context.Context,
	page pagination.PageRequest,
	inspectorID *uuid.UUID,
) (*pagination.PageResult[Assessment], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereNullable("FinalizedAt", nil).
		WhereEquals("EscalationLevel", LevelNone).
		WhereEqualsAny(inspectorID, "MechInspectorID", "ElecInspectorID")

	return r.list(ctx, page, qb)
}

func (r *repo) PendingEngineerReviews(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Assessment], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereNullable("FinalizedAt", nil).
		WhereEquals("EscalationLevel", LevelEngineer)

	return r.list(ctx, page, qb)
}

func (r *repo) PendingAdminReviews(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Assessment], error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereNullable("FinalizedAt", nil).
		WhereEquals("EscalationLevel", LevelAdmin)

	return r.list(ctx, page, qb)
}

func (r *repo) Snapshot(ctx context.Context, id uuid.UUID) (io.ReadCloser, error) {
	a, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Finalized() {
		return nil, ErrSnapshotNotFound
	}

	rc, err := r.archive.Download(ctx, snapshotKey(a))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	return rc, err
}

type mutation func(a *Assessment, now time.Time) (Step, error)

// mutate runs fn against the locked assessment and persists it under the
// finalize guard. A finalizing step applies the outcome in the same
// transaction. Notifications and the archive follow the commit.
func (r *repo) mutate(
	ctx context.Context,
	id uuid.UUID,
	schedule *followups.ScheduleCommand,
	fn mutation,
) (*Result, error) {
	var (
		batch notifications.Batch
		step  Step
	)

	res, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*Result, error) {
		a, err := r.lock(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		step, err = fn(a, r.now())
		if err != nil {
			return nil, err
		}
		if err := r.save(ctx, tx, a); err != nil {
			return nil, err
		}

		result := &Result{Assessment: a}
		switch step {
		case EscalatedToEngineer:
			batch.Add(engineerReviewEvent(a))
		case EscalatedToAdmin:
			batch.Add(adminReviewEvent(a))
		case Finalized:
			if schedule != nil && *a.FinalStatus != verdict.Monitor {
				r.logger.Info("inline schedule ignored", "id", a.ID, "final_status", *a.FinalStatus)
				schedule = nil
			}
			result.Applied, err = r.applicator.Apply(ctx, tx, &batch, a, schedule)
			if err != nil {
				return nil, err
			}
		}
		if schedule != nil && step != Finalized {
			r.logger.Info("inline schedule ignored", "id", a.ID, "escalation_level", a.EscalationLevel)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	batch.Publish(ctx, r.publisher)
	r.observe(ctx, step, res)
	return res, nil
}

func (r *repo) observe(ctx context.Context, step Step, res *Result) {
	a := res.Assessment

	switch step {
	case EscalatedToEngineer, EscalatedToAdmin:
		r.escalations.Add(ctx, 1, metric.WithAttributes(attribute.String("level", string(a.EscalationLevel))))
		r.logger.Info("assessment escalated", "id", a.ID, "level", a.EscalationLevel)
	case Finalized:
		r.finalizations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("final_status", string(*a.FinalStatus)),
			attribute.String("resolved_by", string(*a.ResolvedBy)),
		))
		r.logger.Info("assessment finalized", "id", a.ID, "final_status", *a.FinalStatus, "resolved_by", *a.ResolvedBy)
		r.store(ctx, res)
	}
}

func (r *repo) requireRole(ctx context.Context, userID uuid.UUID, role registry.Role, denied error) error {
	u, err := r.registry.FindUser(ctx, r.db, userID)
	if err != nil {
		return err
	}
	if !u.Has(role) {
		return denied
	}
	return nil
}

func (r *repo) list(
	ctx context.Context,
	page pagination.PageRequest,
	qb *query.Builder,
) (*pagination.PageResult[Assessment], error) {
	page.Normalize(r.pagination)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assessments: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanAssessment)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) findByAssignment(ctx context.Context, q repository.DB, assignmentID uuid.UUID) (*Assessment, error) {
	a, err := repository.QueryOne(ctx, q, selectByAssignment, []any{assignmentID}, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (r *repo) lock(ctx context.Context, q repository.DB, id uuid.UUID) (*Assessment, error) {
	a, err := repository.QueryOne(ctx, q, selectForUpdate, []any{id}, scanAssessment)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

// save writes the mutable columns. A row finalized by a concurrent caller
// matches nothing and yields ErrFinalized.
func (r *repo) save(ctx context.Context, q repository.DB, a *Assessment) error {
	if err := repository.ExecExpectOne(ctx, q, updateSQL, a.updateArgs()...); err != nil {
		return repository.MapError(err, ErrFinalized, ErrDuplicate)
	}
	return nil
}
