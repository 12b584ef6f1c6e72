package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the Redis client backing the session store.
type Cache struct {
	Client *redis.Client
}

func New(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return &Cache{Client: client}, nil
}

func (c *Cache) Close() {
	if c.Client != nil {
		_ = c.Client.Close()
	}
}

func (c *Cache) Health(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
