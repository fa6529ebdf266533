package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matteomic94/ElementMedica-sub009/internal/api"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/ratelimiter"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/requestid"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenantstore"
)

// memStore is an in-memory api.Store.
type memStore struct {
	mu      sync.Mutex
	tenants []*tenant.Tenant
	clock   time.Time
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (s *memStore) add(slug string, active bool) *tenant.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(time.Hour)
	t := &tenant.Tenant{ID: uuid.NewString(), Slug: slug, Name: slug, Active: active, CreatedAt: s.clock}
	s.tenants = append(s.tenants, t)
	return t
}

func (s *memStore) find(match func(*tenant.Tenant) bool) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *memStore) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.ID == id })
}

func (s *memStore) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Slug == slug && t.DeletedAt == nil })
}

func (s *memStore) GetByDomain(_ context.Context, domain string) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Domain == domain && t.DeletedAt == nil })
}

func (s *memStore) OldestActive(_ context.Context) (*tenant.Tenant, error) {
	return s.find(func(t *tenant.Tenant) bool { return t.Usable() })
}

func (s *memStore) Create(_ context.Context, p tenantstore.CreateParams) (*tenant.Tenant, error) {
	if _, err := s.find(func(t *tenant.Tenant) bool { return t.Slug == p.Slug && t.DeletedAt == nil }); err == nil {
		return nil, tenantstore.ErrSlugTaken
	}
	if p.Domain != "" {
		if _, err := s.find(func(t *tenant.Tenant) bool { return t.Domain == p.Domain && t.DeletedAt == nil }); err == nil {
			return nil, tenantstore.ErrDomainTaken
		}
	}
	t := s.add(p.Slug, p.Active)
	s.mu.Lock()
	t.Name, t.Domain = p.Name, p.Domain
	s.mu.Unlock()
	return t, nil
}

func (s *memStore) SoftDelete(_ context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.ID == id && t.DeletedAt == nil {
			now := time.Now()
			t.DeletedAt = &now
			cp := *t
			return &cp, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *memStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (s *memStore) List(_ context.Context, f tenantstore.Filter) ([]*tenant.Tenant, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*tenant.Tenant, 0)
	for _, t := range s.tenants {
		if !f.IncludeDeleted && t.DeletedAt != nil {
			continue
		}
		if f.Active != nil && t.Active != *f.Active {
			continue
		}
		if !strings.HasPrefix(t.Slug, f.SlugPrefix) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func newRouter(t *testing.T, store *memStore) http.Handler {
	t.Helper()
	cache, err := tenant.NewInMemoryCache(100)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	reg := prometheus.NewRegistry()
	return api.NewRouter(api.Deps{
		Store:    store,
		Resolver: tenant.NewResolver(tenant.DefaultPolicy()),
		Cache:    cache,
		Metrics:  tenant.NewMetrics(reg),
		Gatherer: reg,
	})
}

func do(h http.Handler, method, target, host, body string, headers ...string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Host = host
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error       string   `json:"error"`
	Details     []string `json:"details"`
	Suggestions []string `json:"suggestions"`
}

func TestCurrentTenant(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	acme := store.add("acme", true)
	h := newRouter(t, store)

	t.Run("subdomain", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/api/tenant", "acme.platform.io", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(requestid.Header))

		body := decode[map[string]any](t, rec)
		assert.Equal(t, acme.ID, body["tenant_id"])
		assert.Equal(t, "subdomain", body["source"])
	})

	t.Run("trusted header", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/api/tenant", "localhost", "", tenant.HeaderTenantID, "gw-tenant")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tenant_id":"gw-tenant","source":"header"}`, rec.Body.String())
	})

	t.Run("no signal", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/api/tenant", "localhost", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "tenant required", decode[errorBody](t, rec).Error)
	})

	t.Run("unknown subdomain", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodGet, "/api/tenant", "initech.platform.io", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestContact(t *testing.T) {
	t.Parallel()

	const form = `{"name":"Jane","email":"jane@acme.it","message":"Hello"}`

	t.Run("default tenant is the oldest active", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.add("dormant", false)
		first := store.add("first", true)
		store.add("second", true)

		rec := do(newRouter(t, store), http.MethodPost, "/api/contact", "localhost", form)
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, first.ID, decode[map[string]string](t, rec)["tenant_id"])
	})

	t.Run("body tenant id wins over fallback", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.add("first", true)
		second := store.add("second", true)

		body := `{"name":"Jane","email":"jane@acme.it","message":"Hi","tenantId":"` + second.ID + `"}`
		rec := do(newRouter(t, store), http.MethodPost, "/api/contact", "localhost", body)
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, second.ID, decode[map[string]string](t, rec)["tenant_id"])
	})

	t.Run("invalid form", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.add("first", true)

		rec := do(newRouter(t, store), http.MethodPost, "/api/contact", "localhost", `{"name":"","email":"nope","message":"x"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.ElementsMatch(t, []string{"name is required", "email is not a valid address"}, decode[errorBody](t, rec).Details)
	})

	t.Run("no active tenant is a server error", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.add("dormant", false)

		rec := do(newRouter(t, store), http.MethodPost, "/api/contact", "localhost", form)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCreateTenant(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.add("taken", true)
	h := newRouter(t, store)

	t.Run("generates unique slugs", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"name":"Società Élite S.r.l."}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "societa-elite-srl", decode[tenant.Tenant](t, rec).Slug)

		rec = do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"name":"Società Élite S.r.l."}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "societa-elite-srl-1", decode[tenant.Tenant](t, rec).Slug)
	})

	t.Run("explicit slug is validated", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"name":"Admin","slug":"admin","domain":"localhost"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		details := decode[errorBody](t, rec).Details
		assert.Contains(t, details, `slug "admin" is reserved`)
		assert.Contains(t, details, "domain is not a valid hostname")
	})

	t.Run("taken slug returns suggestions", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"name":"Taken","slug":"taken"}`)
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decode[errorBody](t, rec)
		assert.Equal(t, "slug is already taken", body.Error)
		assert.Equal(t, []string{"taken-1", "taken-2", "taken-3"}, body.Suggestions)
	})

	t.Run("name is required", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"slug":"acme"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		t.Parallel()

		rec := do(h, http.MethodPost, "/api/admin/tenants", "localhost", `{"name":"X Corp","plan":"gold"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListTenants(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.add("acme", true)
	store.add("acme-eu", false)
	store.add("globex", true)
	h := newRouter(t, store)

	rec := do(h, http.MethodGet, "/api/admin/tenants?prefix=acme&active=true", "localhost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Tenants []tenant.Tenant `json:"tenants"`
	}](t, rec)
	require.Len(t, body.Tenants, 1)
	assert.Equal(t, "acme", body.Tenants[0].Slug)

	rec = do(h, http.MethodGet, "/api/admin/tenants?limit=abc&offset=-1", "localhost", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Details, "limit must be an integer")

	rec = do(h, http.MethodGet, "/api/admin/tenants?prefix=AC%25", "localhost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTenant(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	acme := store.add("acme", true)
	h := newRouter(t, store)

	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/tenant", "acme.platform.io", "").Code)

	rec := do(h, http.MethodDelete, "/api/admin/tenants/"+acme.ID, "localhost", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(h, http.MethodGet, "/api/tenant", "acme.platform.io", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "cached entry must be invalidated")

	rec = do(h, http.MethodDelete, "/api/admin/tenants/"+acme.ID, "localhost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckSlug(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.add("acme", true)
	store.add("acme-1", true)
	h := newRouter(t, store)

	type checkBody struct {
		Valid       bool     `json:"valid"`
		Available   bool     `json:"available"`
		Errors      []string `json:"errors"`
		Suggestions []string `json:"suggestions"`
	}

	body := decode[checkBody](t, do(h, http.MethodGet, "/api/admin/slugs/check?slug=acme", "localhost", ""))
	assert.True(t, body.Valid)
	assert.False(t, body.Available)
	assert.Equal(t, []string{"acme-2", "acme-3", "acme-4"}, body.Suggestions)

	body = decode[checkBody](t, do(h, http.MethodGet, "/api/admin/slugs/check?slug=initech", "localhost", ""))
	assert.True(t, body.Valid)
	assert.True(t, body.Available)

	body = decode[checkBody](t, do(h, http.MethodGet, "/api/admin/slugs/check?slug=Globex+Corp", "localhost", ""))
	assert.False(t, body.Valid)
	assert.NotEmpty(t, body.Errors)
	assert.Equal(t, []string{"globex-corp"}, body.Suggestions)
}

func TestOperationalEndpoints(t *testing.T) {
	t.Parallel()

	h := newRouter(t, newMemStore())

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz", "localhost", "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/readyz", "localhost", "").Code)

	do(h, http.MethodGet, "/api/tenant", "acme.platform.io", "")
	rec := do(h, http.MethodGet, "/metrics", "localhost", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant_lookups_total")
}

func TestContact_RateLimit(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	acme := store.add("acme", true)
	globex := store.add("globex", true)

	rlStore := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(func() { _ = rlStore.Close() })
	limiter, err := ratelimiter.New(rlStore, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	h := api.NewRouter(api.Deps{
		Store:          store,
		Resolver:       tenant.NewResolver(tenant.DefaultPolicy()),
		ContactLimiter: limiter,
	})

	const form = `{"name":"Jane","email":"jane@acme.it","message":"Hello"}`
	send := func(slug string) *httptest.ResponseRecorder {
		return do(h, http.MethodPost, "/api/contact", slug+".platform.io", form, "X-Forwarded-For", "198.51.100.2")
	}

	for range 2 {
		rec := send(acme.Slug)
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec := send(acme.Slug)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", decode[errorBody](t, rec).Error)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = send(globex.Slug)
	assert.Equal(t, http.StatusAccepted, rec.Code, "buckets are per tenant")
}
