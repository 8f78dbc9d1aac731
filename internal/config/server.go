package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	// DrainTimeout bounds how long in-flight requests may finish after
	// shutdown begins. It must fit inside the service shutdown_timeout.
	DrainTimeout string `toml:"drain_timeout"`
}

var serverEnv = struct {
	Host, Port, ReadHeaderTimeout, ReadTimeout, WriteTimeout, IdleTimeout, DrainTimeout string
}{
	Host:              "INSPECT_SERVER_HOST",
	Port:              "INSPECT_SERVER_PORT",
	ReadHeaderTimeout: "INSPECT_SERVER_READ_HEADER_TIMEOUT",
	ReadTimeout:       "INSPECT_SERVER_READ_TIMEOUT",
	WriteTimeout:      "INSPECT_SERVER_WRITE_TIMEOUT",
	IdleTimeout:       "INSPECT_SERVER_IDLE_TIMEOUT",
	DrainTimeout:      "INSPECT_SERVER_DRAIN_TIMEOUT",
}

func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration { return mustDuration(c.ReadHeaderTimeout) }
func (c *ServerConfig) ReadTimeoutDuration() time.Duration       { return mustDuration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration      { return mustDuration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration       { return mustDuration(c.IdleTimeout) }
func (c *ServerConfig) DrainTimeoutDuration() time.Duration      { return mustDuration(c.DrainTimeout) }

func (c *ServerConfig) Finalize() error {
	envconf.Default(&c.Host, "0.0.0.0")
	envconf.Default(&c.Port, 8080)
	envconf.Default(&c.ReadHeaderTimeout, "10s")
	envconf.Default(&c.ReadTimeout, "30s")
	envconf.Default(&c.WriteTimeout, "1m")
	envconf.Default(&c.IdleTimeout, "2m")
	envconf.Default(&c.DrainTimeout, "15s")

	envconf.String(&c.Host, serverEnv.Host)
	envconf.Int(&c.Port, serverEnv.Port)
	envconf.String(&c.ReadHeaderTimeout, serverEnv.ReadHeaderTimeout)
	envconf.String(&c.ReadTimeout, serverEnv.ReadTimeout)
	envconf.String(&c.WriteTimeout, serverEnv.WriteTimeout)
	envconf.String(&c.IdleTimeout, serverEnv.IdleTimeout)
	envconf.String(&c.DrainTimeout, serverEnv.DrainTimeout)

	return c.validate()
}

func (c *ServerConfig) Merge(overlay *ServerConfig) {
	envconf.Overlay(&c.Host, overlay.Host)
	envconf.Overlay(&c.Port, overlay.Port)
	envconf.Overlay(&c.ReadHeaderTimeout, overlay.ReadHeaderTimeout)
	envconf.Overlay(&c.ReadTimeout, overlay.ReadTimeout)
	envconf.Overlay(&c.WriteTimeout, overlay.WriteTimeout)
	envconf.Overlay(&c.IdleTimeout, overlay.IdleTimeout)
	envconf.Overlay(&c.DrainTimeout, overlay.DrainTimeout)
}

func (c *ServerConfig) validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Port))
	}
	errs = append(errs,
		checkDuration("read_header_timeout", c.ReadHeaderTimeout),
		checkDuration("read_timeout", c.ReadTimeout),
		checkDuration("write_timeout", c.WriteTimeout),
		checkDuration("idle_timeout", c.IdleTimeout),
		checkDuration("drain_timeout", c.DrainTimeout),
	)
	return errors.Join(errs...)
}

// checkDuration rejects values that do not parse or are not positive.
func checkDuration(name, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s: must be positive", name)
	}
	return nil
}

// mustDuration parses a value already accepted by checkDuration.
func mustDuration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
