// Package cache keeps serialized search results in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	KeyPrefix = "search_cache:"
	scanBatch = 500
)

type RedisSearchCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewRedisSearchCache(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisSearchCache {
	return &RedisSearchCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func key(k string) string {
	return KeyPrefix + k
}

func (c *RedisSearchCache) Get(ctx context.Context, k string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	return data, true, nil
}

func (c *RedisSearchCache) Set(ctx context.Context, k string, value []byte) error {
	if err := c.client.Set(ctx, key(k), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes every key under KeyPrefix and returns how many were removed.
func (c *RedisSearchCache) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64

	for {
		keys, next, err := c.client.Scan(ctx, cursor, KeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("redis del: %w", err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Debug().Int64("deleted", deleted).Msg("Cleared search cache keys")
	return deleted, nil
}

func (c *RedisSearchCache) Close() error {
	return c.client.Close()
}
