package registry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// Store is the registry contract consumed by the inspection engine.
type Store interface {
	FindEquipment(ctx context.Context, q repository.DB, id uuid.UUID) (*Equipment, error)
	// StopEquipment marks equipment stopped on behalf of an assessment.
	StopEquipment(ctx context.Context, q repository.DB, id, assessmentID uuid.UUID) error
	// RestoreEquipment sets equipment active unless it is currently stopped.
	// It reports whether the status was changed.
	RestoreEquipment(ctx context.Context, q repository.DB, id uuid.UUID) (bool, error)

	FindAssignment(ctx context.Context, q repository.DB, id uuid.UUID) (*Assignment, error)
	CreateAssignment(ctx context.Context, q repository.DB, cmd NewAssignment) (*Assignment, error)
	CompleteAssignment(ctx context.Context, q repository.DB, id uuid.UUID) error

	FindUser(ctx context.Context, q repository.DB, id uuid.UUID) (*User, error)
	// ListUsers returns the active users holding role.
	ListUsers(ctx context.Context, q repository.DB, role Role) ([]User, error)
	// AvailableInspectors returns active inspectors not on approved leave on date,
	// optionally restricted to one specialization.
	AvailableInspectors(ctx context.Context, q repository.DB, spec *Specialization, date time.Time) ([]User, error)
	OnLeave(ctx context.Context, q repository.DB, userID uuid.UUID, date time.Time) (bool, error)

	// AwardPoints grants points to a user for an assessment once. It reports
	// whether the award was new.
	AwardPoints(ctx context.Context, q repository.DB, assessmentID, userID uuid.UUID, points int) (bool, error)
}

// Postgres implements Store against the registry tables.
type Postgres struct {
	logger *slog.Logger
}

// New creates a Postgres-backed registry.
func New(logger *slog.Logger) *Postgres {
	return &Postgres{logger: logger.With("system", "registry")}
}

const equipmentColumns = `id, name, status, location, stopped_by_assessment_id, updated_at`

func scanEquipment(s repository.Scanner) (Equipment, error) {
	var e Equipment
	err := s.Scan(&e.ID, &e.Name, &e.Status, &e.Location, &e.StoppedByAssessmentID, &e.UpdatedAt)
	return e, err
}

func (p *Postgres) FindEquipment(ctx context.Context, q repository.DB, id uuid.UUID) (*Equipment, error) {
	e, err := repository.QueryOne(ctx, q,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`,
		[]any{id}, scanEquipment,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrEquipmentNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (p *Postgres) StopEquipment(ctx context.Context, q repository.DB, id, assessmentID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, q, `
		UPDATE equipment
		SET status = 'stopped', stopped_by_assessment_id = $2, updated_at = NOW()
		WHERE id = $1`,
		id, assessmentID,
	)
	if err != nil {
		return repository.MapError(err, ErrEquipmentNotFound, ErrDuplicate)
	}

	p.logger.Info("equipment stopped", "equipment_id", id, "assessment_id", assessmentID)
	return nil
}

func (p *Postgres) RestoreEquipment(ctx context.Context, q repository.DB, id uuid.UUID) (bool, error) {
	n, err := repository.ExecAffected(ctx, q, `
		UPDATE equipment
		SET status = 'active', updated_at = NOW()
		WHERE id = $1 AND status <> 'stopped'`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("restore equipment: %w", err)
	}
	return n > 0, nil
}

const assignmentColumns = `id, equipment_id, mech_inspector_id, elec_inspector_id, status,
	mech_checklist_complete, elec_checklist_complete, source_kind, source_id,
	target_date, shift, created_at, completed_at`

func scanAssignment(s repository.Scanner) (Assignment, error) {
	var (
		a          Assignment
		sourceKind *string
		sourceID   *uuid.UUID
	)
	err := s.Scan(
		&a.ID,
		&a.EquipmentID,
		&a.MechInspectorID,
		&a.ElecInspectorID,
		&a.Status,
		&a.MechChecklistComplete,
		&a.ElecChecklistComplete,
		&sourceKind,
		&sourceID,
		&a.TargetDate,
		&a.Shift,
		&a.CreatedAt,
		&a.CompletedAt,
	)
	if err != nil {
		return a, err
	}

	a.Source, err = joinRef(sourceKind, sourceID)
	return a, err
}

func (p *Postgres) FindAssignment(ctx context.Context, q repository.DB, id uuid.UUID) (*Assignment, error) {
	a, err := repository.QueryOne(ctx, q,
		`SELECT `+assignmentColumns+` FROM inspection_assignments WHERE id = $1`,
		[]any{id}, scanAssignment,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrAssignmentNotFound, ErrDuplicate)
	}
	return &a, nil
}

func (p *Postgres) CreateAssignment(ctx context.Context, q repository.DB, cmd NewAssignment) (*Assignment, error) {
	sourceKind, sourceID := splitRef(cmd.Source)

	a, err := repository.QueryOne(ctx, q, `
		INSERT INTO inspection_assignments(
			id, equipment_id, mech_inspector_id, elec_inspector_id,
			source_kind, source_id, target_date, shift
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+assignmentColumns,
		[]any{
			uuid.New(),
			cmd.EquipmentID,
			cmd.MechInspectorID,
			cmd.ElecInspectorID,
			sourceKind,
			sourceID,
			cmd.TargetDate,
			cmd.Shift,
		},
		scanAssignment,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrAssignmentNotFound, ErrDuplicate)
	}

	p.logger.Info("inspection assignment created", "id", a.ID, "equipment_id", a.EquipmentID)
	return &a, nil
}

func (p *Postgres) CompleteAssignment(ctx context.Context, q repository.DB, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		UPDATE inspection_assignments
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND status <> 'completed'`,
		id,
	)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	return nil
}

const userColumns = `u.id, u.name, u.role, u.specialization, u.active`

func scanUser(s repository.Scanner) (User, error) {
	var (
		u    User
		spec *string
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Role, &spec, &u.Active); err != nil {
		return u, err
	}
	if spec != nil {
		sp := Specialization(*spec)
		u.Specialization = &sp
	}
	return u, nil
}

func (p *Postgres) FindUser(ctx context.Context, q repository.DB, id uuid.UUID) (*User, error) {
	u, err := repository.QueryOne(ctx, q,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		[]any{id}, scanUser,
	)
	if err != nil {
		return nil, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (p *Postgres) ListUsers(ctx context.Context, q repository.DB, role Role) ([]User, error) {
	users, err := repository.QueryMany(ctx, q,
		`SELECT `+userColumns+` FROM users u WHERE u.role = $1 AND u.active ORDER BY u.name`,
		[]any{role}, scanUser,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	return users, nil
}

const onLeaveClause = `EXISTS (
	SELECT 1 FROM leaves l
	WHERE l.user_id = u.id AND l.status = 'approved'
	  AND $%d::date BETWEEN l.start_date AND l.end_date
)`

func (p *Postgres) AvailableInspectors(
	ctx context.Context,
	q repository.DB,
	spec *Specialization,
	date time.Time,
) ([]User, error) {
	var specArg *string
	if spec != nil {
		s := string(*spec)
		specArg = &s
	}

	users, err := repository.QueryMany(ctx, q,
		`SELECT `+userColumns+` FROM users u
		WHERE u.role = 'inspector' AND u.active
		  AND ($1::text IS NULL OR u.specialization = $1)
		  AND NOT `+fmt.Sprintf(onLeaveClause, 2)+`
		ORDER BY u.name`,
		[]any{specArg, date}, scanUser,
	)
	if err != nil {
		return nil, fmt.Errorf("list available inspectors: %w", err)
	}
	return users, nil
}

func (p *Postgres) OnLeave(ctx context.Context, q repository.DB, userID uuid.UUID, date time.Time) (bool, error) {
	var onLeave bool
	err := q.QueryRowContext(ctx,
		`SELECT `+fmt.Sprintf(onLeaveClause, 2)+` FROM users u WHERE u.id = $1`,
		userID, date,
	).Scan(&onLeave)
	if err != nil {
		return false, repository.MapError(err, ErrUserNotFound, ErrDuplicate)
	}
	return onLeave, nil
}

func (p *Postgres) AwardPoints(
	ctx context.Context,
	q repository.DB,
	assessmentID, userID uuid.UUID,
	points int,
) (bool, error) {
	n, err := repository.ExecAffected(ctx, q, `
		INSERT INTO point_awards(assessment_id, user_id, points)
		VALUES ($1, $2, $3)
		ON CONFLICT (assessment_id, user_id) DO NOTHING`,
		assessmentID, userID, points,
	)
	if err != nil {
		return false, fmt.Errorf("award points: %w", err)
	}
	return n > 0, nil
}

var _ Store = (*Postgres)(nil)

