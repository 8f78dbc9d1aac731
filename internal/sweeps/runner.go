// Package sweeps runs the periodic follow-up sweeps: materializing follow-ups
// due today and flagging overdue ones.
package sweeps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
)

// Sweep names.
const (
	Materialize = "materialize"
	Overdue     = "overdue"
)

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) (followups.SweepResult, error)
}

// Runner schedules the sweeps on cron expressions and serializes each one
// across instances through a Locker.
type Runner struct {
	cron    *cron.Cron
	jobs    map[string]job
	order   []string
	locker  Locker
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Runner for the follow-up system. A nil locker runs sweeps
// without cross-instance exclusion.
func New(cfg *Config, fs followups.System, locker Locker, loc *time.Location, logger *slog.Logger) *Runner {
	if locker == nil {
		locker = localLocker{}
	}

	r := &Runner{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    make(map[string]job),
		locker:  locker,
		timeout: cfg.LockTTLDuration(),
		logger:  logger.With("system", "sweeps"),
	}

	r.add(job{name: Materialize, schedule: cfg.MaterializeSchedule, run: fs.MaterializeDueToday})
	r.add(job{name: Overdue, schedule: cfg.OverdueSchedule, run: fs.CheckOverdue})
	return r
}

func (r *Runner) add(j job) {
	r.jobs[j.name] = j
	r.order = append(r.order, j.name)
}

// Start registers the cron jobs and ties the scheduler to the lifecycle.
func (r *Runner) Start(lc *lifecycle.Coordinator) error {
	for _, name := range r.order {
		j := r.jobs[name]
		if _, err := r.cron.AddFunc(j.schedule, func() {
			r.Run(lc.Context(), j.name)
		}); err != nil {
			return fmt.Errorf("schedule %s sweep: %w", j.name, err)
		}
	}

	lc.OnStartup(func() {
		r.cron.Start()
		r.logger.Info("sweeps scheduled", "jobs", len(r.jobs))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-r.cron.Stop().Done()
		r.logger.Info("sweeps stopped")
	})

	return nil
}

// Run executes the named sweep once under its lock. A sweep held by another
// instance is skipped and reported as ErrLocked. When the lock store cannot
// be reached the sweep runs unguarded; every record is re-checked under its
// row lock, so overlapping runs stay idempotent.
func (r *Runner) Run(ctx context.Context, name string) (followups.SweepResult, error) {
	j, ok := r.jobs[name]
	if !ok {
		return followups.SweepResult{}, fmt.Errorf("unknown sweep %q", name)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	release, err := r.locker.Acquire(ctx, name)
	if errors.Is(err, ErrLocked) {
		r.logger.Debug("sweep skipped", "sweep", name)
		return followups.SweepResult{}, err
	}
	if err != nil {
		r.logger.Warn("sweep lock unavailable, running unguarded", "sweep", name, "error", err)
		release = func() {}
	}
	defer release()

	start := time.Now()
	result, err := j.run(ctx)
	if err != nil {
		r.logger.Error("sweep failed", "sweep", name, "error", err)
		return result, err
	}

	r.logger.Info("sweep completed",
		"sweep", name,
		"examined", result.Examined,
		"processed", result.Processed,
		"failed", result.Failed,
		"duration", time.Since(start),
	)
	return result, nil
}
