// Package redis owns the Redis connection used by the keyed store backend.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	pingTimeout = 2 * time.Second
	poolSize    = 16
)

// Options describes one Redis endpoint.
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (o Options) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// Client wraps the go-redis client so ping policy stays in one place.
type Client struct {
	*redis.Client
}

// Open connects, verifies the endpoint with a bounded ping and returns the
// client. The caller owns Close.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Host == "" {
		return nil, fmt.Errorf("redis host is not configured")
	}

	c := redis.NewClient(&redis.Options{
		Addr:        opts.addr(),
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: dialTimeout,
		PoolSize:    poolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.addr(), err)
	}
	return &Client{Client: c}, nil
}

// Healthy reports whether the endpoint answers within the ping timeout.
// Readiness probes rely on this rather than pinging the raw client.
func (c *Client) Healthy(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.Ping(pingCtx).Err()
}
