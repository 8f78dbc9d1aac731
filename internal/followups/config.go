package followups

import (
	"fmt"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds follow-up scheduling settings.
type Config struct {
	DefaultOffsetDays int    `toml:"default_offset_days"`
	Timezone          string `toml:"timezone"`
}

// Env maps config fields to environment variable names.
type Env struct {
	DefaultOffsetDays string
	Timezone          string
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
	if overlay.DefaultOffsetDays != 0 {
		c.DefaultOffsetDays = overlay.DefaultOffsetDays
	}
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
}

// Location returns the operating timezone. Finalize guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) loadDefaults() {
	if c.DefaultOffsetDays == 0 {
		c.DefaultOffsetDays = 7
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
}

func (c *Config) loadEnv(env *Env) {
	envconf.Int(&c.DefaultOffsetDays, env.DefaultOffsetDays)
	envconf.String(&c.Timezone, env.Timezone)
}

func (c *Config) validate() error {
	if c.DefaultOffsetDays < 1 {
		return fmt.Errorf("default_offset_days must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}
