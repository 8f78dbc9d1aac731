package api

import (
	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/infrastructure"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
)

// Runtime is the infrastructure as the API module sees it: a module-scoped
// logger plus the settings every domain system shares.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	// Clock evaluates "today" in the operating timezone.
	Clock followups.Clock
}

func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Clock:          followups.NewClock(cfg.Followups.Location(), nil),
	}
}
