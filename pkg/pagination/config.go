// Package pagination provides page requests and results for listing endpoints.
package pagination

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config bounds the page sizes clients may request.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if env != nil {
		envconf.Int(&c.DefaultPageSize, env.DefaultPageSize)
		envconf.Int(&c.MaxPageSize, env.MaxPageSize)
	}

	switch {
	case c.DefaultPageSize < 1:
		return fmt.Errorf("default_page_size must be positive")
	case c.MaxPageSize < 1:
		return fmt.Errorf("max_page_size must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size cannot exceed max_page_size")
	}
	return nil
}

// Merge applies the non-zero values of overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.DefaultPageSize, overlay.DefaultPageSize)
	envconf.Overlay(&c.MaxPageSize, overlay.MaxPageSize)
}
