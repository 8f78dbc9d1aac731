package storage

import (
	"fmt"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// Config holds the archive connection. Storage is optional: an empty
// connection string disables it.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
}

// Env names the environment variables that override Config.
type Env struct {
	ContainerName    string
	ConnectionString string
}

func (c *Config) Enabled() bool {
	return c.ConnectionString != ""
}

// Finalize applies the default container, environment overrides, and the
// Azure container naming rules.
func (c *Config) Finalize(env *Env) error {
	envconf.Default(&c.ContainerName, "inspection-archive")
	if env != nil {
		envconf.String(&c.ContainerName, env.ContainerName)
		envconf.String(&c.ConnectionString, env.ConnectionString)
	}
	return validContainer(c.ContainerName)
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	envconf.Overlay(&c.ContainerName, overlay.ContainerName)
	envconf.Overlay(&c.ConnectionString, overlay.ConnectionString)
}

// validContainer checks 3-63 lowercase letters, digits and single hyphens,
// starting and ending with a letter or digit.
func validContainer(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return fmt.Errorf("container_name must be 3-63 characters: %q", name)
	}
	for i := 0; i < len(name); i++ {
		switch ch := name[i]; {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		case ch == '-' && i > 0 && i < len(name)-1 && name[i-1] != '-':
		default:
			return fmt.Errorf("invalid container_name: %q", name)
		}
	}
	return nil
}
