package cache

import (
	"fmt"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds Redis connection parameters.
type Config struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	DialTimeout string `toml:"dial_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Addr        string
	Password    string
	DB          string
	DialTimeout string
}

// DialTimeoutDuration returns DialTimeout as a time.Duration.
func (c *Config) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	envconf.String(&c.Addr, env.Addr)
	envconf.String(&c.Password, env.Password)
	envconf.Int(&c.DB, env.DB)
	envconf.String(&c.DialTimeout, env.DialTimeout)
}

func (c *Config) validate() error {
	if c.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.DB)
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}
