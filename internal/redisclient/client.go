package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MarkDeliverySeen stores a delivery dedup key with TTL. The durable dedup
// guard is the unique index on webhook_events; this is only the fast path.
func (c *Client) MarkDeliverySeen(ctx context.Context, deliveryKey string, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("delivery:%s", deliveryKey), "1", ttl).Err()
}

// IsDeliverySeen checks whether a delivery key was recently accepted
func (c *Client) IsDeliverySeen(ctx context.Context, deliveryKey string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf("delivery:%s", deliveryKey)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
