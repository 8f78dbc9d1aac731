// Package config assembles the service configuration. Values come from
// config.toml, then an optional config.<env>.toml overlay, then INSPECT_*
// environment variables, with defaults filling whatever remains unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/followups"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/notifications"
	"github.com/AliAliAhmad/inspection-system-sub003/internal/sweeps"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/cache"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/database"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/logging"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvInspectEnv = "INSPECT_ENV"
)

// Config is the root configuration for the inspection service.
type Config struct {
	Server        ServerConfig         `toml:"server"`
	Database      database.Config      `toml:"database"`
	Storage       storage.Config       `toml:"storage"`
	Redis         cache.Config         `toml:"redis"`
	Log           logging.Config       `toml:"log"`
	API           APIConfig            `toml:"api"`
	Sweeps        sweeps.Config        `toml:"sweeps"`
	Followups     followups.Config     `toml:"followups"`
	Notifications notifications.Config `toml:"notifications"`

	// ShutdownTimeout bounds the whole lifecycle shutdown.
	ShutdownTimeout string `toml:"shutdown_timeout"`
	Version         string `toml:"version"`
}

// Env returns INSPECT_ENV, or "local" when unset.
func (c *Config) Env() string {
	env := "local"
	envconf.String(&env, EnvInspectEnv)
	return env
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Load reads config.toml when present, merges the INSPECT_ENV overlay when
// one exists, and finalizes every section. With no files at all the
// service runs on defaults and environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(BaseConfigFile, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if env := os.Getenv(EnvInspectEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		overlay := &Config{}
		switch err := decodeFile(path, overlay); {
		case err == nil:
			cfg.Merge(overlay)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.ShutdownTimeout, overlay.ShutdownTimeout)
	envconf.Overlay(&c.Version, overlay.Version)

	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Redis.Merge(&overlay.Redis)
	c.Log.Merge(&overlay.Log)
	c.API.Merge(&overlay.API)
	c.Sweeps.Merge(&overlay.Sweeps)
	c.Followups.Merge(&overlay.Followups)
	c.Notifications.Merge(&overlay.Notifications)
}

func (c *Config) finalize() error {
	envconf.Default(&c.ShutdownTimeout, "30s")
	envconf.Default(&c.Version, "0.1.0")
	envconf.String(&c.ShutdownTimeout, "INSPECT_SHUTDOWN_TIMEOUT")
	envconf.String(&c.Version, "INSPECT_VERSION")

	if err := checkDuration("shutdown_timeout", c.ShutdownTimeout); err != nil {
		return err
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"database", func() error { return c.Database.Finalize(envDatabase) }},
		{"storage", func() error { return c.Storage.Finalize(envStorage) }},
		{"redis", func() error { return c.Redis.Finalize(envRedis) }},
		{"log", func() error { return c.Log.Finalize(envLog) }},
		{"api", c.API.Finalize},
		{"sweeps", func() error { return c.Sweeps.Finalize(envSweeps) }},
		{"followups", func() error { return c.Followups.Finalize(envFollowups) }},
		{"notifications", func() error { return c.Notifications.Finalize(envNotifications) }},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if c.Server.DrainTimeoutDuration() > c.ShutdownTimeoutDuration() {
		return fmt.Errorf("server: drain_timeout %s exceeds shutdown_timeout %s",
			c.Server.DrainTimeout, c.ShutdownTimeout)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
