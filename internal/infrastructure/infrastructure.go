// Package infrastructure builds the shared subsystems every domain package
// depends on: logging, the lifecycle, the database pool, the snapshot
// archive, and the Redis client.
package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/cache"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/database"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/logging"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

const serviceName = "inspection-system"

// ErrStarting is reported by Ready until every startup hook has run.
var ErrStarting = errors.New("subsystems still starting")

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System

	flush  func() error
	errOut io.Writer
}

// New constructs every subsystem without connecting anything. Connections
// are made by the startup hooks registered in Start.
func New(cfg *config.Config) (*Infrastructure, error) {
	logger, flush, err := logging.New(&cfg.Log, serviceName)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logger = logger.With("version", cfg.Version, "env", cfg.Env())

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	archive, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		db.Connection().Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Database:  db,
		Storage:   archive,
		Cache:     cache.New(&cfg.Redis, logger),
		flush:     flush,
		errOut:    os.Stderr,
	}, nil
}

// Start registers the lifecycle hooks of each subsystem in dependency order.
func (i *Infrastructure) Start() error {
	subsystems := []struct {
		name  string
		start func(*lifecycle.Coordinator) error
	}{
		{"database", i.Database.Start},
		{"storage", i.Storage.Start},
		{"redis", i.Cache.Start},
	}
	for _, s := range subsystems {
		if err := s.start(i.Lifecycle); err != nil {
			return fmt.Errorf("%s start: %w", s.name, err)
		}
	}
	return nil
}

// Ready reports whether the service can take traffic. The database is the
// only hard dependency; storage and Redis degrade individual features.
func (i *Infrastructure) Ready(ctx context.Context) error {
	if !i.Lifecycle.Ready() {
		return ErrStarting
	}
	return i.Database.Ping(ctx)
}

// Sync flushes buffered log entries. The logger is gone by then, so a failed
// flush is written to stderr. Terminals and pipes reject fsync with ENOTTY or
// EINVAL; those are not failures.
func (i *Infrastructure) Sync() {
	if i.flush == nil {
		return
	}
	err := i.flush()
	if err == nil || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) {
		return
	}
	fmt.Fprintf(i.errOut, "flush logs: %v\n", err)
}
