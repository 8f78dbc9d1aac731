package followups

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// MaterializeDueToday turns every follow-up scheduled for today into an
// inspection assignment. Each record is handled in its own transaction and
// re-checked under lock, so overlapping runs skip records already handled.
func (r *repo) MaterializeDueToday(ctx context.Context) (SweepResult, error) {
	today := r.clock.Today()

	ids, err := repository.QueryIDs(ctx, r.db,
		`SELECT id FROM followups WHERE status = $1 AND target_date = $2 ORDER BY created_at`,
		Scheduled, today,
	)
	if err != nil {
		return SweepResult{}, fmt.Errorf("select due followups: %w", err)
	}

	return r.sweep(ctx, "materialize", ids, r.materializeOne), nil
}

// CheckOverdue flags every open follow-up whose target date has passed and
// raises a critical alert for each, including records flagged by earlier runs.
func (r *repo) CheckOverdue(ctx context.Context) (SweepResult, error) {
	today := r.clock.Today()

	statuses := make([]string, len(overdueEligible))
	for i, s := range overdueEligible {
		statuses[i] = string(s)
	}

	ids, err := repository.QueryIDs(ctx, r.db,
		`SELECT id FROM followups WHERE status = ANY($1) AND target_date < $2 ORDER BY target_date`,
		pq.Array(statuses), today,
	)
	if err != nil {
		return SweepResult{}, fmt.Errorf("select overdue followups: %w", err)
	}

	return r.sweep(ctx, "overdue", ids, r.overdueOne), nil
}

// sweep applies fn to each record. A failing record is logged and counted;
// the remaining records are still processed.
func (r *repo) sweep(
	ctx context.Context,
	name string,
	ids []uuid.UUID,
	fn func(context.Context, uuid.UUID, time.Time) (bool, error),
) SweepResult {
	result := SweepResult{Examined: len(ids)}
	today := r.clock.Today()

	for _, id := range ids {
		if ctx.Err() != nil {
			r.logger.Warn("sweep interrupted", "sweep", name, "remaining", result.Examined-result.Processed-result.Failed)
			break
		}

		processed, err := fn(ctx, id, today)
		switch {
		case err != nil:
			result.Failed++
			r.logger.Error("sweep record failed", "sweep", name, "followup_id", id, "error", err)
		case processed:
			result.Processed++
		}
	}

	r.logger.Info("sweep finished",
		"sweep", name,
		"examined", result.Examined,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return result
}

func (r *repo) materializeOne(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	var batch notifications.Batch

	processed, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		f, err := r.lock(ctx, tx, id)
		if err != nil {
			return false, err
		}
		if f.Status != Scheduled {
			return false, nil
		}
		if f.MechInspectorID == nil || f.ElecInspectorID == nil || f.Shift == nil {
			return false, fmt.Errorf("scheduled followup %s is missing its schedule", f.ID)
		}

		a, err := r.registry.CreateAssignment(ctx, tx, registry.NewAssignment{
			EquipmentID:     f.EquipmentID,
			MechInspectorID: *f.MechInspectorID,
			ElecInspectorID: *f.ElecInspectorID,
			TargetDate:      today,
			Shift:           string(*f.Shift),
			Source:          registry.FollowupRef{ID: f.ID},
		})
		if err != nil {
			return false, err
		}

		if err := f.Materialize(a.ID, r.clock.Now()); err != nil {
			return false, err
		}
		if err := r.save(ctx, tx, f); err != nil {
			return false, err
		}

		batch.Add(assignedEvent(f, a.ID))
		return true, nil
	})
	if err != nil || !processed {
		return false, err
	}

	batch.Publish(ctx, r.publisher)
	r.materialized.Add(ctx, 1)
	r.logger.Info("followup materialized", "id", id)
	return true, nil
}

func (r *repo) overdueOne(ctx context.Context, id uuid.UUID, today time.Time) (bool, error) {
	var batch notifications.Batch

	processed, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (bool, error) {
		f, err := r.lock(ctx, tx, id)
		if err != nil {
			return false, err
		}
		if !slices.Contains(overdueEligible, f.Status) || !f.TargetDate.Before(today) {
			return false, nil
		}

		first, err := f.MarkOverdue(r.clock.Now())
		if err != nil {
			return false, err
		}
		if err := r.save(ctx, tx, f); err != nil {
			return false, err
		}

		if first {
			r.logger.Warn("followup overdue", "id", f.ID, "target_date", f.TargetDate)
		}
		batch.Add(overdueEvent(f, today))
		return true, nil
	})
	if err != nil || !processed {
		return false, err
	}

	batch.Publish(ctx, r.publisher)
	r.flagged.Add(ctx, 1)
	return true, nil
}
