package tenant

import (
	"context"
	"time"
)

// Tenant represents an isolated customer organization whose data is
// partitioned from all others in the shared store.
type Tenant struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Domain    string     `json:"domain,omitempty"`
	Active    bool       `json:"active"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the tenant may serve requests: active and not soft-deleted.
func (t *Tenant) Usable() bool {
	return t != nil && t.Active && t.DeletedAt == nil
}

// Provider loads tenants from the data store.
// Lookups by slug and domain only consider tenants that are not soft-deleted.
type Provider interface {
	// GetByID returns ErrTenantNotFound if no tenant has the id.
	GetByID(ctx context.Context, id string) (*Tenant, error)

	// GetBySlug returns ErrTenantNotFound if no tenant has the slug.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetByDomain returns ErrTenantNotFound if no tenant has the custom domain.
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)

	// OldestActive returns the active, non-deleted tenant with the earliest
	// creation time. When there is none it returns ErrTenantNotFound or
	// ErrNoActiveTenant; DefaultTenant treats both the same.
	OldestActive(ctx context.Context) (*Tenant, error)
}
