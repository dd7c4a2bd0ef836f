package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCapabilityCache is the single-instance fallback for the capability
// cache.
type MemoryCapabilityCache struct {
	gen   atomic.Uint64
	cache *lru.LRU[string, []string]
}

// NewMemoryCapabilityCache creates an LRU holding at most size entries.
func NewMemoryCapabilityCache(size int, ttl time.Duration) *MemoryCapabilityCache {
	if size <= 0 {
		size = 1024
	}
	return &MemoryCapabilityCache{cache: lru.NewLRU[string, []string](size, nil, ttl)}
}

func (c *MemoryCapabilityCache) Generation(context.Context) (uint64, error) {
	return c.gen.Load(), nil
}

func (c *MemoryCapabilityCache) Get(_ context.Context, gen uint64, key string) ([]string, bool, error) {
	caps, ok := c.cache.Get(memoryKey(gen, key))
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), caps...), true, nil
}

func (c *MemoryCapabilityCache) Set(_ context.Context, gen uint64, key string, caps []string) error {
	if gen != c.gen.Load() {
		return nil
	}
	c.cache.Add(memoryKey(gen, key), append([]string{}, caps...))
	return nil
}

// InvalidateAll bumps the generation and drops every entry.
func (c *MemoryCapabilityCache) InvalidateAll(context.Context) error {
	c.gen.Add(1)
	c.cache.Purge()
	return nil
}

func memoryKey(gen uint64, key string) string {
	return fmt.Sprintf("%d:%s", gen, key)
}

// MemoryRevocations is the single-instance fallback for the revocation list.
type MemoryRevocations struct {
	cache *lru.LRU[string, time.Time]
}

// NewMemoryRevocations keeps up to size revoked ids for at most ttl.
func NewMemoryRevocations(size int, ttl time.Duration) *MemoryRevocations {
	if size <= 0 {
		size = 4096
	}
	return &MemoryRevocations{cache: lru.NewLRU[string, time.Time](size, nil, ttl)}
}

func (r *MemoryRevocations) Revoke(_ context.Context, id string, expiresAt time.Time) error {
	if time.Until(expiresAt) <= 0 {
		return nil
	}
	r.cache.Add(id, expiresAt)
	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	expiresAt, ok := r.cache.Get(id)
	return ok && time.Now().Before(expiresAt), nil
}
