package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis provides Redis-backed caching for multi-instance deployments.
// Failures are logged and treated as cache misses; the cache is never a
// hard dependency of the serving path.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a Redis cache with the given client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		client: client,
		prefix: "basil:",
	}
}

// NewRedisFromURL connects to Redis using a redis:// URL.
func NewRedisFromURL(redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedis(redis.NewClient(opt)), nil
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Warn("Redis cache get failed", "key", key, "error", err)
		return nil, nil
	}
	return data, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		slog.Warn("Redis cache set failed", "key", key, "error", err)
	}
	return nil
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		slog.Warn("Redis cache delete failed", "key", key, "error", err)
	}
	return nil
}

func (c *Redis) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
