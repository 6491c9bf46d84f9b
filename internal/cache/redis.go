package cache

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache stored in a Redis database. Keys are namespaced by the
// configured prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a client for the configured server. No connection is made
// until the first command.
func NewRedis(conf config.CacheConfig) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:        conf.RedisAddress,
			Password:    conf.RedisPassword,
			DB:          conf.RedisDB,
			DialTimeout: 2 * time.Second,
		}),
		prefix: conf.KeyPrefix,
	}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
