// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/infrastructure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/middleware"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware,
// and starts the notification dispatcher and sweeps on the lifecycle.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	if err := domain.Start(runtime.Lifecycle); err != nil {
		return nil, fmt.Errorf("start domain: %w", err)
	}

	mux := http.NewServeMux()
	registered := registerRoutes(mux, domain)

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(
		middleware.RequestID,
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)

	runtime.Logger.Info("api routes registered", "base_path", m.Prefix(), "routes", len(registered))
	return m, nil
}
