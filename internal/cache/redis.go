package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

// RedisConfig represents the Redis cache configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Prefix   string // Key prefix (default: "availmon")
}

// RedisCache shares views between instances. Values are snappy-compressed;
// view JSON is highly repetitive and shrinks several times over.
type RedisCache struct {
	client *redis.Client
	config RedisConfig
}

// newRedisCache connects to Redis and checks the connection
func newRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisCacheWithClient(client, cfg), nil
}

func newRedisCacheWithClient(client *redis.Client, cfg RedisConfig) *RedisCache {
	if cfg.Prefix == "" {
		cfg.Prefix = "availmon"
	}
	return &RedisCache{client: client, config: cfg}
}

func (c *RedisCache) redisKey(key string) string {
	return c.config.Prefix + ":view:" + key
}

// Get fetches and decompresses a value
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false, fmt.Errorf("snappy decompress failed: %w", err)
	}
	return value, true, nil
}

// Set compresses and stores a value
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.redisKey(key), snappy.Encode(nil, value), 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Purge deletes every view key under the prefix. Keys are found with SCAN
// so the server is never blocked by KEYS.
func (c *RedisCache) Purge(ctx context.Context) error {
	pattern := c.config.Prefix + ":view:*"
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
