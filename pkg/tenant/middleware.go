package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Middleware creates HTTP middleware that resolves the request tenant and
// attaches its Identity to the request context.
//
// Requests without any signal continue without identity, unless
// WithDefaultFallback is set. A trusted X-Tenant-ID is attached as is unless
// WithVerifyHeaderID(true) is set. Every other signal is looked up through the
// cache and the provider; concurrent lookups of the same key share one
// provider call.
func Middleware(resolver *Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	if resolver == nil {
		resolver = NewResolver(DefaultPolicy())
	}

	cfg := &config{
		cache:        NewNoOpCache(),
		cacheTTL:     DefaultCacheTTL,
		errorHandler: DefaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	l := &loader{cfg: cfg, provider: provider}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()
			sig := resolver.Resolve(r)

			if !sig.Resolved() {
				if !cfg.fallback {
					next.ServeHTTP(w, r)
					return
				}
				t, err := l.loadDefault(ctx)
				if err != nil {
					cfg.fail(w, r, sig, err)
					return
				}
				id := Identity{TenantID: t.ID, Source: SourceDefault, Tenant: t}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
				return
			}

			if sig.Trusted() && !cfg.verifyHeaderID {
				cfg.metrics.lookup(sig.Kind, outcomeTrusted)
				id := Identity{TenantID: sig.Value, Source: sig.Source}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
				return
			}

			t, err := l.load(ctx, sig)
			if err != nil {
				cfg.fail(w, r, sig, err)
				return
			}

			id := Identity{TenantID: t.ID, Source: sig.Source, Tenant: t}
			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// RequireTenant creates middleware that rejects requests without a tenant
// identity with ErrTenantRequired (400).
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrTenantRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// fail logs the resolution error and hands it to the error handler.
// Configuration and infrastructure failures are logged at error level.
func (c *config) fail(w http.ResponseWriter, r *http.Request, sig Signal, err error) {
	level := slog.LevelWarn
	if StatusCode(err) >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	c.logger.Log(r.Context(), level, "tenant resolution failed",
		slog.Any("signal", sig),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	c.errorHandler(w, r, err)
}

// loader looks tenants up through the cache, collapsing concurrent misses.
type loader struct {
	cfg      *config
	provider Provider
	group    singleflight.Group
}

func (l *loader) load(ctx context.Context, sig Signal) (*Tenant, error) {
	key := sig.cacheKey()
	if t, ok := l.cfg.cache.Get(ctx, key); ok {
		l.cfg.metrics.lookup(sig.Kind, outcomeCached)
		if !t.Usable() {
			return nil, ErrInactiveTenant
		}
		return t, nil
	}

	return l.do(ctx, key, sig.Kind, func(ctx context.Context) (*Tenant, error) {
		return Lookup(ctx, l.provider, sig)
	})
}

func (l *loader) loadDefault(ctx context.Context) (*Tenant, error) {
	if t, ok := l.cfg.cache.Get(ctx, defaultCacheKey); ok && t.Usable() {
		l.cfg.metrics.lookup(KindID, outcomeCached)
		return t, nil
	}

	return l.do(ctx, defaultCacheKey, KindID, func(ctx context.Context) (*Tenant, error) {
		return DefaultTenant(ctx, l.provider)
	})
}

// do runs fn once per key among concurrent callers and caches any tenant it returns.
// The shared call is detached from the first caller's cancellation.
func (l *loader) do(ctx context.Context, key string, kind Kind, fn func(context.Context) (*Tenant, error)) (*Tenant, error) {
	v, err, _ := l.group.Do(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		start := time.Now()
		t, err := fn(callCtx)
		l.cfg.metrics.observe(kind, start)
		l.cfg.metrics.lookup(kind, outcomeOf(err))

		if t != nil && (err == nil || errors.Is(err, ErrInactiveTenant)) {
			if cerr := l.cfg.cache.Set(callCtx, key, t, l.cfg.cacheTTL); cerr != nil {
				l.cfg.logger.WarnContext(callCtx, "failed to cache tenant",
					slog.String("key", key),
					slog.Any("error", cerr),
				)
			}
		}
		return t, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant), nil
}
