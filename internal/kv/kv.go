// Package kv is the redis key-value store behind the token store.
package kv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options selects the redis server and database.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Client reads and writes short-lived byte values. When redis cannot be
// reached reads behave as misses and writes are dropped, so tokens simply
// stop persisting instead of failing every request.
type Client struct {
	rdb *redis.Client
}

// New creates a client; no connection is made until first use.
func New(opts Options) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

func (c *Client) ready() bool { return c != nil && c.rdb != nil }

// Ping reports whether redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if !c.ready() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Get returns the value under key, or nil when it is missing.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.ready() {
		return nil, nil
	}
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and connection errors alike
		return nil, nil
	}
	return val, nil
}

// Set stores value under key for ttl.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.ready() {
		c.rdb.Set(ctx, key, value, ttl)
	}
	return nil
}

// Delete removes key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c.ready() {
		c.rdb.Del(ctx, key)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if !c.ready() {
		return nil
	}
	return c.rdb.Close()
}
