// Package database owns the PostgreSQL pool of the service. The pool is
// opened eagerly, verified by a startup ping, and closed when the lifecycle
// shuts down.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
)

// ErrNotReady is returned by Ping until the startup ping succeeds and again
// once shutdown begins.
var ErrNotReady = errors.New("database not ready")

const (
	startupAttempts = 3
	startupBackoff  = time.Second
)

// System exposes the pool and its readiness.
type System interface {
	Connection() *sql.DB
	// Ping verifies the pool, bounded by the configured connection timeout.
	Ping(ctx context.Context) error
	// Start registers the startup ping and the shutdown close.
	Start(lc *lifecycle.Coordinator) error
}

type pool struct {
	db      *sql.DB
	logger  *slog.Logger
	timeout time.Duration
	ready   atomic.Bool
}

// New opens the pool without connecting. sql.Open only validates the driver
// name, so a bad host surfaces at Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &pool{
		db:      db,
		logger:  logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
		timeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (p *pool) Connection() *sql.DB {
	return p.db
}

func (p *pool) Ping(ctx context.Context) error {
	if !p.ready.Load() {
		return ErrNotReady
	}
	if err := p.ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	return nil
}

func (p *pool) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.db.PingContext(ctx)
}

func (p *pool) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		if err := p.connect(lc.Context()); err != nil {
			p.logger.Error("database unreachable", "attempts", startupAttempts, "error", err)
			return
		}
		p.ready.Store(true)
		p.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		p.ready.Store(false)

		stats := p.db.Stats()
		if err := p.db.Close(); err != nil {
			p.logger.Error("database close failed", "error", err)
			return
		}
		p.logger.Info("database connection closed",
			"open", stats.OpenConnections,
			"wait_count", stats.WaitCount,
		)
	})

	return nil
}

// connect pings until one attempt succeeds, waiting longer after each
// failure. It gives up early when ctx ends.
func (p *pool) connect(ctx context.Context) error {
	var err error
	for attempt := 1; attempt <= startupAttempts; attempt++ {
		if err = p.ping(ctx); err == nil {
			return nil
		}
		if attempt == startupAttempts {
			break
		}
		p.logger.Warn("database ping failed, retrying", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * startupBackoff):
		}
	}
	return err
}
