// Package redis provides a thin wrapper around go-redis/v9 for storing a
// rendered report as a Redis list.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
)

// pushChunk bounds the number of values sent in one RPUSH.
const pushChunk = 1000

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// ReplaceList atomically replaces key with values in order. A positive ttl
// sets an expiry on the new list.
func (c *Client) ReplaceList(ctx context.Context, key string, values []string, ttl time.Duration) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		for start := 0; start < len(values); start += pushChunk {
			end := min(start+pushChunk, len(values))
			args := make([]any, 0, end-start)
			for _, v := range values[start:end] {
				args = append(args, v)
			}
			pipe.RPush(ctx, key, args...)
		}
		if ttl > 0 && len(values) > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing list %s: %w", key, err)
	}
	return nil
}

// Range returns the list elements between start and stop inclusive.
func (c *Client) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.LRange(ctx, key, start, stop).Result()
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
