// Package dashboard aggregates assessment, follow-up, and equipment counts
// for the operations overview.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// Stats is a point-in-time overview.
type Stats struct {
	Assessments AssessmentStats `json:"assessments"`
	Followups   FollowupStats   `json:"followups"`
	Equipment   map[string]int  `json:"equipment"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// AssessmentStats counts open assessments by the tier that owns them and
// finalized ones by final status.
type AssessmentStats struct {
	AwaitingVerdicts int            `json:"awaiting_verdicts"`
	PendingEngineer  int            `json:"pending_engineer"`
	PendingAdmin     int            `json:"pending_admin"`
	Finalized        map[string]int `json:"finalized"`
}

type FollowupStats struct {
	ByStatus map[string]int `json:"by_status"`
	DueToday int            `json:"due_today"`
	Overdue  int            `json:"overdue"`
}

// System defines the dashboard contract.
type System interface {
	Handler() *Handler
	Stats(ctx context.Context) (*Stats, error)
}

type repo struct {
	db     *sql.DB
	clock  followups.Clock
	logger *slog.Logger
}

// New creates the dashboard system. Today is evaluated with clock.
func New(db *sql.DB, clock followups.Clock, logger *slog.Logger) System {
	return &repo{
		db:     db,
		clock:  clock,
		logger: logger.With("system", "dashboard"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

const (
	openAssessmentsSQL = `
		SELECT escalation_level, COUNT(*) FROM assessments
		WHERE finalized_at IS NULL
		GROUP BY escalation_level`

	finalizedAssessmentsSQL = `
		SELECT final_status, COUNT(*) FROM assessments
		WHERE finalized_at IS NOT NULL
		GROUP BY final_status`

	followupStatusSQL = `SELECT status, COUNT(*) FROM followups GROUP BY status`

	dueTodaySQL = `
		SELECT COUNT(*) FROM followups
		WHERE target_date = $1 AND status = ANY($2)`

	equipmentStatusSQL = `SELECT status, COUNT(*) FROM equipment GROUP BY status`
)

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	open, err := countBy(ctx, r.db, openAssessmentsSQL)
	if err != nil {
		return nil, fmt.Errorf("count open assessments: %w", err)
	}
	finalized, err := countBy(ctx, r.db, finalizedAssessmentsSQL)
	if err != nil {
		return nil, fmt.Errorf("count finalized assessments: %w", err)
	}
	byStatus, err := countBy(ctx, r.db, followupStatusSQL)
	if err != nil {
		return nil, fmt.Errorf("count followups: %w", err)
	}

	var dueToday int
	active := pq.Array([]string{string(followups.Scheduled), string(followups.AssignmentCreated)})
	if err := r.db.QueryRowContext(ctx, dueTodaySQL, r.clock.Today(), active).Scan(&dueToday); err != nil {
		return nil, fmt.Errorf("count followups due today: %w", err)
	}

	equipment, err := countBy(ctx, r.db, equipmentStatusSQL)
	if err != nil {
		return nil, fmt.Errorf("count equipment: %w", err)
	}

	return &Stats{
		Assessments: AssessmentStats{
			AwaitingVerdicts: open["none"],
			PendingEngineer:  open["engineer"],
			PendingAdmin:     open["admin"],
			Finalized:        finalized,
		},
		Followups: FollowupStats{
			ByStatus: byStatus,
			DueToday: dueToday,
			Overdue:  byStatus[string(followups.Overdue)],
		},
		Equipment:   equipment,
		GeneratedAt: r.clock.Now(),
	}, nil
}

type bucket struct {
	key   string
	count int
}

func countBy(ctx context.Context, q repository.Querier, query string, args ...any) (map[string]int, error) {
	rows, err := repository.QueryMany(ctx, q, query, args, func(s repository.Scanner) (bucket, error) {
		var b bucket
		err := s.Scan(&b.key, &b.count)
		return b, err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, b := range rows {
		out[b.key] = b.count
	}
	return out, nil
}
