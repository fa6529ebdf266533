package tenant_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
)

// mockProvider is an in-memory Provider for tests.
type mockProvider struct {
	mu      sync.RWMutex
	tenants []*tenant.Tenant
	calls   int
	err     error
	delay   time.Duration
}

func newMockProvider(tenants ...*tenant.Tenant) *mockProvider {
	return &mockProvider{tenants: tenants}
}

func (m *mockProvider) find(match func(*tenant.Tenant) bool) (*tenant.Tenant, error) {
	m.mu.Lock()
	m.calls++
	err, delay := m.err, m.delay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tenants {
		if match(t) {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *mockProvider) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	return m.find(func(t *tenant.Tenant) bool { return t.ID == id })
}

func (m *mockProvider) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	return m.find(func(t *tenant.Tenant) bool { return t.Slug == slug && t.DeletedAt == nil })
}

func (m *mockProvider) GetByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	return m.find(func(t *tenant.Tenant) bool { return t.Domain == domain && t.DeletedAt == nil })
}

func (m *mockProvider) OldestActive(_ context.Context) (*tenant.Tenant, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	active := make([]*tenant.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		if t.Usable() {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return nil, tenant.ErrTenantNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.Before(active[j].CreatedAt) })
	return active[0], nil
}

func (m *mockProvider) callCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// createTestTenant builds a tenant whose id is "id-<slug>".
func createTestTenant(slug string, active bool) *tenant.Tenant {
	return &tenant.Tenant{
		ID:        "id-" + slug,
		Slug:      slug,
		Name:      slug + " Corp",
		Active:    active,
		CreatedAt: time.Now(),
	}
}
