// Package cache provides a small redis-backed JSON cache with explicit
// TTLs. Callers construct one per concern instead of sharing a process
// singleton, so each hot path carries its own expiry policy.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports an absent or expired key.
var ErrMiss = errors.New("cache: miss")

// Connect builds a redis client from an address or redis:// URL and
// verifies connectivity.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// TTL is a typed JSON cache over one redis client with a fixed expiry.
// A nil receiver or nil client disables caching: Get always misses,
// Set is a no-op.
type TTL struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewTTL(client redis.Cmdable, prefix string, ttl time.Duration) *TTL {
	return &TTL{client: client, prefix: prefix, ttl: ttl}
}

func (c *TTL) Get(ctx context.Context, key string, dest any) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, c.prefix+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *TTL) Set(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+":"+key, raw, c.ttl).Err()
}
