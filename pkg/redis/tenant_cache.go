package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
)

// TenantCache implements tenant.Cache on Redis so every replica shares one
// view of resolved tenants. Tenants are stored as JSON.
type TenantCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// TenantCacheOption configures a TenantCache.
type TenantCacheOption func(*TenantCache)

// WithKeyPrefix sets the prefix prepended to every key.
func WithKeyPrefix(prefix string) TenantCacheOption {
	return func(c *TenantCache) {
		c.prefix = prefix
	}
}

// WithCacheLogger sets the logger used for read failures, which are
// reported as cache misses.
func WithCacheLogger(logger *slog.Logger) TenantCacheOption {
	return func(c *TenantCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTenantCache wraps client. Keys default to the "tenant:" prefix.
func NewTenantCache(client redis.UniversalClient, opts ...TenantCacheOption) *TenantCache {
	c := &TenantCache{
		client: client,
		prefix: "tenant:",
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ tenant.Cache = (*TenantCache)(nil)

// Get returns a miss on any error so resolution falls through to the store.
func (c *TenantCache) Get(ctx context.Context, key string) (*tenant.Tenant, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "tenant cache read failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var t tenant.Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.logger.WarnContext(ctx, "tenant cache entry is corrupt", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return &t, true
}

func (c *TenantCache) Set(ctx context.Context, key string, t *tenant.Tenant, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return errors.Join(ErrCacheWrite, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return errors.Join(ErrCacheWrite, err)
	}
	return nil
}

func (c *TenantCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Join(ErrCacheDelete, err)
	}
	return nil
}

// Close is a no-op. The client belongs to the caller.
func (c *TenantCache) Close() error {
	return nil
}
