package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/envconf"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/middleware"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/pagination"
)

// APIConfig holds the REST module settings.
type APIConfig struct {
	// BasePath is the single path segment the module is mounted under.
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
}

func (c *APIConfig) Finalize() error {
	envconf.Default(&c.BasePath, "/api")
	envconf.String(&c.BasePath, "INSPECT_API_BASE_PATH")

	if !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 || len(c.BasePath) == 1 {
		return fmt.Errorf("invalid base_path: %q", c.BasePath)
	}

	return errors.Join(
		wrap("cors", c.CORS.Finalize(&middleware.CORSEnv{
			Enabled:          "INSPECT_CORS_ENABLED",
			Origins:          "INSPECT_CORS_ORIGINS",
			AllowedMethods:   "INSPECT_CORS_ALLOWED_METHODS",
			AllowedHeaders:   "INSPECT_CORS_ALLOWED_HEADERS",
			AllowCredentials: "INSPECT_CORS_ALLOW_CREDENTIALS",
			MaxAge:           "INSPECT_CORS_MAX_AGE",
		})),
		wrap("pagination", c.Pagination.Finalize(&pagination.ConfigEnv{
			DefaultPageSize: "INSPECT_PAGINATION_DEFAULT_PAGE_SIZE",
			MaxPageSize:     "INSPECT_PAGINATION_MAX_PAGE_SIZE",
		})),
	)
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	envconf.Overlay(&c.BasePath, overlay.BasePath)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

// wrap prefixes a section name onto a non-nil error.
func wrap(section string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", section, err)
}
