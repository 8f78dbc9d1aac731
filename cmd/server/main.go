// Command server runs the inspection HTTP service with its follow-up sweeps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer srv.infra.Sync()

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.logger.Error("shutdown incomplete", "error", err)
		return err
	}
	srv.infra.Logger.Info("inspection service stopped")
	return nil
}
