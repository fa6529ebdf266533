package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// DefaultCacheSize is the default maximum number of tenants in the in-memory cache.
const DefaultCacheSize = 1000

// defaultCacheKey holds the tenant picked by the default fallback.
const defaultCacheKey = "default:oldest"

// Cache is the interface for tenant caching implementations.
// Keys are built with CacheKey.
type Cache interface {
	// Get retrieves a tenant from cache by key.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores a tenant in cache with the given TTL.
	Set(ctx context.Context, key string, tenant *Tenant, ttl time.Duration) error

	// Delete removes a tenant from cache.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// CacheKey returns the cache key for a tenant looked up by kind and value.
func CacheKey(kind Kind, value string) string {
	return Signal{Kind: kind, Value: value}.cacheKey()
}

// Invalidate removes every cache entry that can point at t.
func Invalidate(ctx context.Context, cache Cache, t *Tenant) error {
	if cache == nil || t == nil {
		return nil
	}
	keys := []string{CacheKey(KindID, t.ID), CacheKey(KindSlug, t.Slug), defaultCacheKey}
	if t.Domain != "" {
		keys = append(keys, CacheKey(KindDomain, t.Domain))
	}

	var errs []error
	for _, k := range keys {
		if err := cache.Delete(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// inMemoryCache keeps tenants in process using ristretto's admission and TTL handling.
type inMemoryCache struct {
	c *ristretto.Cache[string, *Tenant]
}

// NewInMemoryCache creates an in-process cache holding up to maxItems tenants.
func NewInMemoryCache(maxItems int64) (Cache, error) {
	if maxItems <= 0 {
		maxItems = DefaultCacheSize
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *Tenant]{
		NumCounters:        maxItems * 10,
		MaxCost:            maxItems,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &inMemoryCache{c: c}, nil
}

func (m *inMemoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	return m.c.Get(key)
}

// Set waits for the write buffer so the entry is visible to the next Get.
func (m *inMemoryCache) Set(_ context.Context, key string, tenant *Tenant, ttl time.Duration) error {
	m.c.SetWithTTL(key, tenant, 1, ttl)
	m.c.Wait()
	return nil
}

func (m *inMemoryCache) Delete(_ context.Context, key string) error {
	m.c.Del(key)
	return nil
}

func (m *inMemoryCache) Close() error {
	m.c.Close()
	return nil
}

// noOpCache is a cache that doesn't cache anything.
// Useful for testing or when caching should be disabled.
type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) (*Tenant, bool) { return nil, false }

func (noOpCache) Set(context.Context, string, *Tenant, time.Duration) error { return nil }

func (noOpCache) Delete(context.Context, string) error { return nil }

func (noOpCache) Close() error { return nil }
