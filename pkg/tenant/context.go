package tenant

import (
	"context"
	"log/slog"
)

// Identity is the resolved tenant of a request. It is attached to the request
// context once and never modified afterwards.
type Identity struct {
	TenantID string
	Source   Source
	// Tenant is nil when the id came from the trusted header without verification.
	Tenant *Tenant
}

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithIdentity adds the resolved identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext retrieves the identity from the context.
// Returns false if the request was not scoped to a tenant.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.TenantID == "" {
		return Identity{}, false
	}
	return id, true
}

// IDFromContext retrieves just the tenant id from the context.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := FromContext(ctx)
	return id.TenantID, ok
}

// MustFromContext retrieves the identity from the context.
// Panics if there is none. Use this only behind RequireTenant.
func MustFromContext(ctx context.Context) Identity {
	id, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return id
}

// LoggerExtractor returns a logger context extractor for the tenant id.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}

// SourceLoggerExtractor returns a logger context extractor for the signal source.
func SourceLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := FromContext(ctx); ok && id.Source != "" {
			return slog.String("tenant_source", string(id.Source)), true
		}
		return slog.Attr{}, false
	}
}
