// Package cache provides Redis client management with lifecycle coordination.
package cache

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/AliAliAhmad/inspection-system-sub003/pkg/lifecycle"
)

// System manages the Redis client and lifecycle coordination.
type System interface {
	// Client returns the underlying Redis client.
	Client() *redis.Client
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type cache struct {
	client *redis.Client
	logger *slog.Logger
	cfg    *Config
}

// New creates a cache system. No connection is made until Start is called.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
	})

	return &cache{
		client: client,
		logger: logger.With("system", "cache"),
		cfg:    cfg,
	}
}

func (c *cache) Client() *redis.Client {
	return c.client
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting redis client", "addr", c.cfg.Addr)

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), c.cfg.DialTimeoutDuration())
		defer cancel()

		if err := c.client.Ping(pingCtx).Err(); err != nil {
			c.logger.Error("redis ping failed", "error", err)
			return
		}

		c.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		if err := c.client.Close(); err != nil {
			c.logger.Error("redis close failed", "error", err)
			return
		}

		c.logger.Info("redis connection closed")
	})

	return nil
}
