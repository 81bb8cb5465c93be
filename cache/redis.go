package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/sharedprefs"
)

// redisClient is the subset of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisCache implements sharedprefs.Cache on a Redis server, letting several
// processes share one read cache.
type RedisCache struct {
	client redisClient
}

// NewRedisCache connects to the Redis server at addr and pings it.
func NewRedisCache(addr string, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to connect to redis: %v", sharedprefs.ErrCacheUnavailable, err)
	}

	return &RedisCache{client: client}, nil
}

// Get returns the bytes under key, or sharedprefs.ErrNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sharedprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get from redis: %v", sharedprefs.ErrCacheUnavailable, err)
	}
	return data, nil
}

// Set stores value under key for ttl. A ttl of zero never expires.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to set in redis: %v", sharedprefs.ErrCacheUnavailable, err)
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete from redis: %v", sharedprefs.ErrCacheUnavailable, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
