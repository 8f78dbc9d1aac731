package middleware

import (
	"net/http"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
)

// CORSConfig holds the cross-origin policy of the API. CORS stays off until
// Enabled is set and at least one origin is listed.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig fields.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials string
	MaxAge           string
}

func (c *CORSConfig) Finalize(env *CORSEnv) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	envconf.Default(&c.MaxAge, 3600)

	if env != nil {
		envconf.Bool(&c.Enabled, env.Enabled)
		envconf.List(&c.Origins, env.Origins)
		envconf.List(&c.AllowedMethods, env.AllowedMethods)
		envconf.List(&c.AllowedHeaders, env.AllowedHeaders)
		envconf.Bool(&c.AllowCredentials, env.AllowCredentials)
		envconf.Int(&c.MaxAge, env.MaxAge)
	}
	return nil
}

// Merge applies the non-zero fields of overlay. An overlay can switch the
// boolean flags on but not off; use the environment to disable them.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	envconf.Overlay(&c.Enabled, overlay.Enabled)
	envconf.Overlay(&c.AllowCredentials, overlay.AllowCredentials)
	envconf.Overlay(&c.MaxAge, overlay.MaxAge)

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
}
