package tenant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/tenant"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	acme := createTestTenant("acme", true)
	acme.Domain = "acme-training.it"
	dormant := createTestTenant("dormant", false)
	deletedAt := time.Now()
	gone := createTestTenant("gone", true)
	gone.DeletedAt = &deletedAt

	provider := newMockProvider(acme, dormant, gone)
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		t.Parallel()
		got, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceQuery, Kind: tenant.KindID, Value: "id-acme"})
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("by slug", func(t *testing.T) {
		t.Parallel()
		got, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceSubdomain, Kind: tenant.KindSlug, Value: "acme"})
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("by domain", func(t *testing.T) {
		t.Parallel()
		got, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceDomain, Kind: tenant.KindDomain, Value: "acme-training.it"})
		require.NoError(t, err)
		assert.Equal(t, acme, got)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		t.Parallel()
		_, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceHeader, Kind: tenant.KindSlug, Value: "initech"})
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("inactive tenant", func(t *testing.T) {
		t.Parallel()
		got, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceHeader, Kind: tenant.KindSlug, Value: "dormant"})
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
		assert.Equal(t, dormant, got)
	})

	t.Run("soft deleted tenant by id is inactive", func(t *testing.T) {
		t.Parallel()
		_, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceHeader, Kind: tenant.KindID, Value: "id-gone"})
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})

	t.Run("malformed slug is a validation error", func(t *testing.T) {
		t.Parallel()
		_, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceHeader, Kind: tenant.KindSlug, Value: "Admin"})
		require.Error(t, err)
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)

		var verr *tenant.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, tenant.KindSlug, verr.Kind)
		assert.NotEmpty(t, verr.Errors)
	})

	t.Run("malformed domain is a validation error", func(t *testing.T) {
		t.Parallel()
		_, err := tenant.Lookup(ctx, provider, tenant.Signal{Source: tenant.SourceDomain, Kind: tenant.KindDomain, Value: "example.com"})
		assert.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})

	t.Run("unresolved signal", func(t *testing.T) {
		t.Parallel()
		_, err := tenant.Lookup(ctx, provider, tenant.Signal{})
		assert.ErrorIs(t, err, tenant.ErrTenantRequired)
	})

	t.Run("provider error passes through", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection refused")
		failing := newMockProvider()
		failing.err = boom
		_, err := tenant.Lookup(ctx, failing, tenant.Signal{Source: tenant.SourceQuery, Kind: tenant.KindID, Value: "x"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDefaultTenant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("oldest active tenant wins", func(t *testing.T) {
		t.Parallel()

		t1 := createTestTenant("first", true)
		t1.CreatedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		t2 := createTestTenant("second", true)
		t2.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		older := createTestTenant("older-inactive", false)
		older.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

		got, err := tenant.DefaultTenant(ctx, newMockProvider(t2, older, t1))
		require.NoError(t, err)
		assert.Equal(t, "id-first", got.ID)
	})

	t.Run("no active tenant is a configuration error", func(t *testing.T) {
		t.Parallel()

		provider := newMockProvider(createTestTenant("inactive", false))
		_, err := tenant.DefaultTenant(ctx, provider)
		assert.ErrorIs(t, err, tenant.ErrNoActiveTenant)
		assert.Equal(t, 1, provider.callCount(), "must not retry")
	})

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.DefaultTenant(ctx, newMockProvider())
		assert.ErrorIs(t, err, tenant.ErrNoActiveTenant)
	})
}

func TestValidateDomain(t *testing.T) {
	t.Parallel()

	valid := []string{"acme-training.it", "portal.acme.co.uk", "ACME.COM", "xn--bcher-kva.example.de"}
	for _, d := range valid {
		assert.Empty(t, tenant.ValidateDomain(d), "domain %s should be valid", d)
		assert.True(t, tenant.IsValidDomain(d))
	}

	invalid := map[string]string{
		"":                "domain is required",
		"192.168.1.1":     "domain must not be an IP address",
		"localhost":       "domain is not a valid hostname",
		"example.com":     `domain "example.com" is reserved`,
		"-acme.com":       "domain is not a valid hostname",
		"acme..com":       "domain is not a valid hostname",
		"acme.c":          "domain is not a valid hostname",
		"under_score.com": "domain is not a valid hostname",
	}
	for d, msg := range invalid {
		errs := tenant.ValidateDomain(d)
		assert.Contains(t, errs, msg, "domain %q", d)
		assert.False(t, tenant.IsValidDomain(d))
	}

	long := ""
	for len(long) < 260 {
		long += "abcdefghij."
	}
	long += "com"
	assert.Contains(t, tenant.ValidateDomain(long), "domain must be at most 253 characters long")
}
