// Package logging builds the service slog.Logger on a zap core.
package logging

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds log output settings.
type Config struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Level  string
	Format string
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
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

func (c *Config) loadEnv(env *Env) {
	envconf.String(&c.Level, env.Level)
	envconf.String(&c.Format, env.Format)
	c.Level = strings.ToLower(c.Level)
	c.Format = strings.ToLower(c.Format)
}

func (c *Config) validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("invalid format %q: want json or console", c.Format)
	}
	return nil
}

// New builds a logger writing through zap. The returned sync flushes
// buffered entries and should run at shutdown.
func New(cfg *Config, service string) (*slog.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.OutputPaths = []string{"stdout"}
		zc.ErrorOutputPaths = []string{"stderr"}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	base, err := zc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build zap logger: %w", err)
	}
	if service != "" {
		base = base.With(zap.String("service_name", service))
	}

	return FromCore(base.Core()), base.Sync, nil
}

// FromCore wraps a zap core as an slog.Logger.
func FromCore(core zapcore.Core) *slog.Logger {
	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))
}
