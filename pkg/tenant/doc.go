// Package tenant resolves the tenant of an incoming HTTP request and scopes the
// request to it.
//
// Every data access in a multi-tenant backend is filtered by tenant, so the
// tenant has to be derived from the request before any handler runs. Requests
// carry several, sometimes conflicting, hints. The package turns them into one
// deterministic answer.
//
// # Architecture
//
// The package is built around four pieces:
//
//  1. Resolver - finds the first tenant Signal in a request (pure, no I/O)
//  2. Lookup - turns a Signal into a Tenant through a Provider, validating slugs and domains first
//  3. Middleware - orchestrates resolution, caching, default fallback and error responses
//  4. Identity - the immutable value handlers read from the request context
//
// # Signal priority
//
// The Resolver checks the following sources and stops at the first match:
//
//  1. X-Tenant-ID header: tenant id, trusted (set by the internal gateway)
//  2. X-Tenant-Slug header: slug
//  3. Host subdomain: "acme" from acme.example.com, "acme" from www.acme.example.com
//  4. Custom domain: the whole host, unless it is a system domain
//  5. Query parameters tenantId, then tenant
//  6. JSON body fields tenantId, then tenant (non-GET requests only)
//
// A signal that fails later (unknown slug, inactive tenant) is reported to the
// caller. The next source is never tried.
//
// # Usage
//
//	resolver := tenant.NewResolver(tenant.DefaultPolicy(), tenant.WithResolverLogger(log))
//
//	// Tenant-scoped API: reject requests without a tenant.
//	r.With(
//		tenant.Middleware(resolver, store, tenant.WithCache(cache)),
//		tenant.RequireTenant(nil),
//	).Get("/api/tenant", handler)
//
//	// Public contact form: fall back to the oldest active tenant.
//	r.With(
//		tenant.Middleware(resolver, store, tenant.WithDefaultFallback()),
//	).Post("/api/contact", contact)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		id := tenant.MustFromContext(r.Context())
//		// filter queries by id.TenantID
//	}
//
// # Error Handling
//
//   - ErrInvalidIdentifier / *ValidationError: malformed slug or domain (400, with details)
//   - ErrTenantRequired: no tenant on an endpoint that needs one (400)
//   - ErrTenantNotFound: signal points at no tenant (404)
//   - ErrInactiveTenant: tenant exists but is inactive or deleted (403)
//   - ErrNoActiveTenant: default fallback found no active tenant at all (500, logged at error)
//
// # Caching
//
// Looked up tenants are cached by kind and value ("slug:acme"). The in-memory
// cache is backed by ristretto; pkg/redis provides a shared Redis cache.
// Concurrent misses for the same key are collapsed into one provider call.
// Use Invalidate after changing or deleting a tenant.
package tenant
