package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/api"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/infrastructure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/module"
)

// Server owns the HTTP listener of the inspection service and the
// infrastructure behind it.
type Server struct {
	infra  *infrastructure.Infrastructure
	http   *http.Server
	logger *slog.Logger

	drainTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, fmt.Errorf("api module: %w", err)
	}

	router := module.NewRouter()
	if err := router.Mount(apiModule); err != nil {
		return nil, err
	}
	router.Probe("GET /healthz", func(context.Context) error { return nil })
	router.Probe("GET /readyz", infra.Ready)

	infra.Logger.Info("server initialized", "addr", cfg.Server.Addr(), "version", cfg.Version)

	return &Server{
		infra: infra,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeoutDuration(),
			ReadTimeout:       cfg.Server.ReadTimeoutDuration(),
			WriteTimeout:      cfg.Server.WriteTimeoutDuration(),
			IdleTimeout:       cfg.Server.IdleTimeoutDuration(),
		},
		logger:       infra.Logger.With("system", "http"),
		drainTimeout: cfg.Server.DrainTimeoutDuration(),
	}, nil
}

// Start binds the listen address, then serves in the background. A bind
// failure is returned here rather than logged from the serving goroutine.
func (s *Server) Start() error {
	if err := s.infra.Start(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}

	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc := s.infra.Lifecycle
	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.drainTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
			return
		}
		s.logger.Info("server drained")
	})

	go func() {
		lc.WaitForStartup()
		s.infra.Logger.Info("inspection service ready")
	}()

	return nil
}

// Shutdown cancels the lifecycle and waits for every subsystem to stop.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
