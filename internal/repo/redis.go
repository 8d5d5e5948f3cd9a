package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV is a KV on a redis server. Keys are stored under Prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// DefaultRedisPrefix namespaces the browser's keys on a shared server.
const DefaultRedisPrefix = "tripbrowser:"

// NewRedisKV connects to the redis server at addr and pings it.
func NewRedisKV(ctx context.Context, addr string) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("repo.NewRedisKV: ping %s: %w", addr, err)
	}
	return &RedisKV{client: client, prefix: DefaultRedisPrefix}, nil
}

// WithPrefix returns a RedisKV sharing the connection but using prefix.
func (r *RedisKV) WithPrefix(prefix string) *RedisKV {
	return &RedisKV{client: r.client, prefix: prefix}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("repo.RedisKV.Get: %w", err)
	}
	return v, true, nil
}

// Set stores value without expiry.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("repo.RedisKV.Set: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
