package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisCapabilityCache_RoundTrip(t *testing.T) {
	client, _ := setupRedis(t)
	c := NewRedisCapabilityCache(client, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	_, ok, err := c.Get(ctx, gen, "agent:a1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, gen, "agent:a1", []string{"chat", "reports_view"}))
	caps, ok, err := c.Get(ctx, gen, "agent:a1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"chat", "reports_view"}, caps)
}

func TestRedisCapabilityCache_EmptySetIsCached(t *testing.T) {
	client, _ := setupRedis(t)
	c := NewRedisCapabilityCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "agent:a1", nil))
	caps, ok, err := c.Get(ctx, 0, "agent:a1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, caps)
}

func TestRedisCapabilityCache_InvalidateAll(t *testing.T) {
	client, _ := setupRedis(t)
	c := NewRedisCapabilityCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "agent:a1", []string{"chat"}))
	require.NoError(t, c.InvalidateAll(ctx))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	_, ok, err := c.Get(ctx, gen, "agent:a1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCapabilityCache_Expires(t *testing.T) {
	client, mr := setupRedis(t)
	c := NewRedisCapabilityCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, "agent:a1", []string{"chat"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, 0, "agent:a1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCapabilityCache_Unavailable(t *testing.T) {
	client, mr := setupRedis(t)
	c := NewRedisCapabilityCache(client, time.Minute)
	mr.Close()

	_, err := c.Generation(context.Background())
	assert.Error(t, err)
}

func TestRedisRevocations(t *testing.T) {
	client, mr := setupRedis(t)
	r := NewRedisRevocations(client)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-old")
	require.NoError(t, err)
	assert.False(t, revoked)
}
