package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements KV on top of a Redis server.
type Redis struct {
	rdb *redis.Client
}

// NewRedis parses redisURL and verifies connectivity.
func NewRedis(ctx context.Context, redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{rdb: rdb}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Close closes the underlying connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Get returns the string stored at key.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value at key with an optional ttl.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

// SetAdd adds members to the set at key.
func (r *Redis) SetAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.rdb.SAdd(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", key, err)
	}
	return nil
}

// SetRemove removes members from the set at key.
func (r *Redis) SetRemove(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.rdb.SRem(ctx, key, toAny(members)...).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", key, err)
	}
	return nil
}

// SetMembers returns all members of the set at key.
func (r *Redis) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := r.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", key, err)
	}
	return members, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
