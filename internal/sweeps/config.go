package sweeps

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds the sweep schedules. Schedules use standard five-field cron
// syntax evaluated in the follow-up timezone.
type Config struct {
	Disabled            bool   `toml:"disabled"`
	MaterializeSchedule string `toml:"materialize_schedule"`
	OverdueSchedule     string `toml:"overdue_schedule"`
	LockTTL             string `toml:"lock_ttl"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Disabled            string
	MaterializeSchedule string
	OverdueSchedule     string
	LockTTL             string
}

// LockTTLDuration returns LockTTL as a time.Duration.
func (c *Config) LockTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.LockTTL)
	return d
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Disabled {
		c.Disabled = true
	}
	if overlay.MaterializeSchedule != "" {
		c.MaterializeSchedule = overlay.MaterializeSchedule
	}
	if overlay.OverdueSchedule != "" {
		c.OverdueSchedule = overlay.OverdueSchedule
	}
	if overlay.LockTTL != "" {
		c.LockTTL = overlay.LockTTL
	}
}

func (c *Config) loadDefaults() {
	if c.MaterializeSchedule == "" {
		c.MaterializeSchedule = "5 0 * * *"
	}
	if c.OverdueSchedule == "" {
		c.OverdueSchedule = "0 * * * *"
	}
	if c.LockTTL == "" {
		c.LockTTL = "10m"
	}
}

func (c *Config) loadEnv(env *Env) {
	envconf.Bool(&c.Disabled, env.Disabled)
	envconf.String(&c.MaterializeSchedule, env.MaterializeSchedule)
	envconf.String(&c.OverdueSchedule, env.OverdueSchedule)
	envconf.String(&c.LockTTL, env.LockTTL)
}

func (c *Config) validate() error {
	if _, err := cron.ParseStandard(c.MaterializeSchedule); err != nil {
		return fmt.Errorf("invalid materialize_schedule: %w", err)
	}
	if _, err := cron.ParseStandard(c.OverdueSchedule); err != nil {
		return fmt.Errorf("invalid overdue_schedule: %w", err)
	}
	d, err := time.ParseDuration(c.LockTTL)
	if err != nil {
		return fmt.Errorf("invalid lock_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("lock_ttl must be positive")
	}
	return nil
}
