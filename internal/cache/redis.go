// Package cache holds the capability cache and the session revocation list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	generationKey = "caps:generation"
	revokedPrefix = "session:revoked:"
)

// RedisCapabilityCache keeps resolved capabilities in Redis, keyed by
// generation so that one INCR invalidates every entry across instances.
type RedisCapabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCapabilityCache builds a cache over client.
func NewRedisCapabilityCache(client *redis.Client, ttl time.Duration) *RedisCapabilityCache {
	return &RedisCapabilityCache{client: client, ttl: ttl}
}

// Generation returns the current cache generation.
func (c *RedisCapabilityCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, generationKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

// Get reads a cached capability list.
func (c *RedisCapabilityCache) Get(ctx context.Context, gen uint64, key string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var caps []string
	if err := json.Unmarshal(raw, &caps); err != nil {
		return nil, false, fmt.Errorf("decode cached capabilities: %w", err)
	}
	return caps, true, nil
}

// Set stores caps under gen. Writes for a superseded generation are harmless:
// nothing reads them and they expire with the TTL.
func (c *RedisCapabilityCache) Set(ctx context.Context, gen uint64, key string, caps []string) error {
	if caps == nil {
		caps = []string{}
	}
	raw, err := json.Marshal(caps)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, entryKey(gen, key), raw, c.ttl).Err()
}

// InvalidateAll moves to the next generation.
func (c *RedisCapabilityCache) InvalidateAll(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func entryKey(gen uint64, key string) string {
	return fmt.Sprintf("caps:%d:%s", gen, key)
}

// RedisRevocations records logged-out session ids until their tokens expire.
type RedisRevocations struct {
	client *redis.Client
}

// NewRedisRevocations builds a revocation list over client.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// Revoke marks id revoked until expiresAt.
func (r *RedisRevocations) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedPrefix+id, 1, ttl).Err()
}

// IsRevoked reports whether id was revoked.
func (r *RedisRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
