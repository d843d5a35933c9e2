package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int

	// ConnectAttempts bounds the pings Connect makes before giving up.
	ConnectAttempts int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Connect builds a client and checks it answers before returning it,
// backing off between failed pings.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	c := New(cfg)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt - 1)):
			case <-ctx.Done():
				_ = c.Close()
				return nil, fmt.Errorf("redis connect %s: %w", cfg.Addr, ctx.Err())
			}
		}

		if err = c.Ping(ctx); err == nil {
			return c, nil
		}
	}

	_ = c.Close()
	return nil, fmt.Errorf("redis ping %s after %d attempts: %w", cfg.Addr, attempts, err)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Raw exposes the underlying client, e.g. for the rate limiter.
func (c *Client) Raw() *redis.Client {
	return c.redisdb
}
