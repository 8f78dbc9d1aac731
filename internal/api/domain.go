package api

import (
	"github.com/AliAliAhmad/inspection-system-sub003/internal/assessments"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/config"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/dashboard"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/sweeps"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Registry      *registry.Postgres
	Notifications *notifications.Dispatcher
	Followups     followups.System
	Assessments   assessments.System
	Dashboard     dashboard.System
	Sweeps        *sweeps.Runner

	sweepsDisabled bool
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()
	reg := registry.New(runtime.Logger)

	senders := []notifications.Sender{notifications.NewPostgresSender(db)}
	if cfg.Notifications.Stream != "" {
		senders = append(senders, notifications.NewStreamSender(
			runtime.Cache.Client(),
			cfg.Notifications.Stream,
			cfg.Notifications.StreamMaxLen,
		))
	}

	dispatcher := notifications.NewDispatcher(
		notifications.NewResolver(db, reg),
		runtime.Logger,
		cfg.Notifications.Options(),
		senders...,
	)

	followupsSystem := followups.New(
		db,
		reg,
		dispatcher,
		cfg.Followups,
		runtime.Logger,
		runtime.Pagination,
	)

	assessmentsSystem := assessments.New(
		db,
		reg,
		followupsSystem,
		dispatcher,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	dashboardSystem := dashboard.New(db, runtime.Clock, runtime.Logger)

	runner := sweeps.New(
		&cfg.Sweeps,
		followupsSystem,
		sweeps.NewRedisLocker(runtime.Cache.Client(), cfg.Sweeps.LockTTLDuration()),
		cfg.Followups.Location(),
		runtime.Logger,
	)

	return &Domain{
		Registry:       reg,
		Notifications:  dispatcher,
		Followups:      followupsSystem,
		Assessments:    assessmentsSystem,
		Dashboard:      dashboardSystem,
		Sweeps:         runner,
		sweepsDisabled: cfg.Sweeps.Disabled,
	}
}

// Start registers the background systems with the lifecycle coordinator.
func (d *Domain) Start(lc *lifecycle.Coordinator) error {
	d.Notifications.Start(lc)
	if d.sweepsDisabled {
		return nil
	}
	return d.Sweeps.Start(lc)
}
