package notifications

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds delivery settings. An empty Stream disables the Redis stream sender.
type Config struct {
	Timeout      string `toml:"timeout"`
	Concurrency  int    `toml:"concurrency"`
	Stream       string `toml:"stream"`
	StreamMaxLen int64  `toml:"stream_max_len"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Timeout      string
	Concurrency  string
	Stream       string
	StreamMaxLen string
}

// Options converts the config into dispatcher options.
func (c *Config) Options() Options {
	d, _ := time.ParseDuration(c.Timeout)
	return Options{Timeout: d, Concurrency: c.Concurrency}
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
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.Stream != "" {
		c.Stream = overlay.Stream
	}
	if overlay.StreamMaxLen != 0 {
		c.StreamMaxLen = overlay.StreamMaxLen
	}
}

func (c *Config) loadDefaults() {
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 8
	}
	if c.Stream == "" {
		c.Stream = "inspect:notifications"
	}
	if c.StreamMaxLen == 0 {
		c.StreamMaxLen = 10000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.Concurrency != "" {
		if v := os.Getenv(env.Concurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Concurrency = n
			}
		}
	}
	if env.Stream != "" {
		if v, ok := os.LookupEnv(env.Stream); ok {
			c.Stream = v
		}
	}
	if env.StreamMaxLen != "" {
		if v := os.Getenv(env.StreamMaxLen); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				c.StreamMaxLen = n
			}
		}
	}
}

func (c *Config) validate() error {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.StreamMaxLen < 0 {
		return fmt.Errorf("invalid stream_max_len: %d", c.StreamMaxLen)
	}
	return nil
}
