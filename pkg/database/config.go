package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds PostgreSQL connection and pool parameters.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

// Env names the environment variables that override Config fields.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
}

var sslModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn returns the connection URL shared by the pgx driver and golang-migrate.
// Credentials are escaped.
func (c *Config) Dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Finalize fills defaults, applies env overrides and validates.
func (c *Config) Finalize(env *Env) error {
	envconf.Default(&c.Host, "localhost")
	envconf.Default(&c.Port, 5432)
	envconf.Default(&c.SSLMode, "disable")
	envconf.Default(&c.MaxOpenConns, 25)
	envconf.Default(&c.MaxIdleConns, 5)
	envconf.Default(&c.ConnMaxLifetime, "15m")
	envconf.Default(&c.ConnTimeout, "5s")

	if env != nil {
		envconf.String(&c.Host, env.Host)
		envconf.Int(&c.Port, env.Port)
		envconf.String(&c.Name, env.Name)
		envconf.String(&c.User, env.User)
		envconf.String(&c.Password, env.Password)
		envconf.String(&c.SSLMode, env.SSLMode)
		envconf.Int(&c.MaxOpenConns, env.MaxOpenConns)
		envconf.Int(&c.MaxIdleConns, env.MaxIdleConns)
		envconf.String(&c.ConnMaxLifetime, env.ConnMaxLifetime)
		envconf.String(&c.ConnTimeout, env.ConnTimeout)
	}

	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.Host, overlay.Host)
	envconf.Overlay(&c.Port, overlay.Port)
	envconf.Overlay(&c.Name, overlay.Name)
	envconf.Overlay(&c.User, overlay.User)
	envconf.Overlay(&c.Password, overlay.Password)
	envconf.Overlay(&c.SSLMode, overlay.SSLMode)
	envconf.Overlay(&c.MaxOpenConns, overlay.MaxOpenConns)
	envconf.Overlay(&c.MaxIdleConns, overlay.MaxIdleConns)
	envconf.Overlay(&c.ConnMaxLifetime, overlay.ConnMaxLifetime)
	envconf.Overlay(&c.ConnTimeout, overlay.ConnTimeout)
}

func (c *Config) validate() error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, errors.New("name required"))
	}
	if c.User == "" {
		errs = append(errs, errors.New("user required"))
	}
	if !sslModes[c.SSLMode] {
		errs = append(errs, fmt.Errorf("invalid ssl_mode: %s", c.SSLMode))
	}
	if c.MaxOpenConns < 1 {
		errs = append(errs, errors.New("max_open_conns must be positive"))
	} else if c.MaxIdleConns > c.MaxOpenConns {
		errs = append(errs, errors.New("max_idle_conns cannot exceed max_open_conns"))
	}
	for name, v := range map[string]string{
		"conn_max_lifetime": c.ConnMaxLifetime,
		"conn_timeout":      c.ConnTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
