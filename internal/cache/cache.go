// Package cache provides a string key/value cache with expiry, backed by
// Redis or by process memory.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"go.uber.org/zap"
)

// Cache stores string values with an optional time-to-live. A ttl of zero keeps
// the value until it is deleted.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// New returns a Redis cache when an address is configured and reachable, and
// a memory cache otherwise.
func New(ctx context.Context, conf config.CacheConfig, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf.RedisAddress == "" {
		return NewMemory()
	}

	r := NewRedis(conf)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using in-memory cache",
			zap.String("op", "cache.New"),
			zap.String("address", conf.RedisAddress),
			zap.Error(err),
		)
		_ = r.Close()
		return NewMemory()
	}
	logger.Info("using redis cache",
		zap.String("op", "cache.New"),
		zap.String("address", conf.RedisAddress),
	)
	return r
}

// GetJSON decodes the cached value at key into v. It reports false on a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.Set(ctx, key, string(raw), ttl)
}
