// Package tenantstore keeps tenants in PostgreSQL through pgx.
//
// Store implements tenant.Provider for the resolver middleware and adds the
// administrative operations: Create, SoftDelete, SlugExists and List. Slugs and
// domains are unique among tenants that are not soft-deleted; the partial
// unique indexes live in the migrations package.
package tenantstore
