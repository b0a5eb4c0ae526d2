// Package cache provides a Redis-backed key/value cache for read-mostly lookups.
// Cache failures never surface to callers: a failed read is a miss and a failed
// write is logged and dropped.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/bestiary/pkg/lifecycle"
)

// System is a best-effort byte cache.
type System interface {
	// Get returns the cached value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key with the configured TTL.
	Set(ctx context.Context, key string, value []byte)
	// Ready reports whether the backing store answered its startup ping.
	Ready() bool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// New returns a Redis-backed System, or a no-op System when caching is disabled.
func New(cfg *Config, logger *slog.Logger) System {
	if !cfg.Enabled {
		return Noop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return NewRedis(client, cfg.Prefix, cfg.TTLDuration(), logger)
}

type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	ready  atomic.Bool
}

// NewRedis wraps an existing client. Keys are namespaced with prefix.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) System {
	return &redisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("system", "cache"),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *redisCache) Ready() bool {
	return c.ready.Load()
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), 5*time.Second)
		defer cancel()

		if err := c.client.Ping(ctx).Err(); err != nil {
			c.logger.Warn("cache unreachable, continuing without it", "error", err)
			return
		}

		c.ready.Store(true)
		c.logger.Info("cache connected", "addr", c.client.Options().Addr)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache closed")
	})

	return nil
}

type noop struct{}

// Noop returns a System that never stores anything.
func Noop() System {
	return noop{}
}

func (noop) Get(context.Context, string) ([]byte, bool) {
	return nil, false
}

func (noop) Set(context.Context, string, []byte) {}

func (noop) Ready() bool {
	return true
}

func (noop) Start(*lifecycle.Coordinator) error {
	return nil
}
