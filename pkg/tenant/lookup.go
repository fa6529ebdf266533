package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/Matteomic94/ElementMedica-sub009/pkg/slug"
)

// Lookup loads the tenant a signal points at.
// Slug and domain signals are validated before the provider is queried.
// Unknown tenants yield ErrTenantNotFound, inactive or deleted ones
// ErrInactiveTenant. There is no fallback to any other source.
func Lookup(ctx context.Context, provider Provider, sig Signal) (*Tenant, error) {
	if !sig.Resolved() {
		return nil, ErrTenantRequired
	}

	var (
		t   *Tenant
		err error
	)
	switch sig.Kind {
	case KindID:
		t, err = provider.GetByID(ctx, sig.Value)
	case KindSlug:
		if errs := slug.Validate(sig.Value); len(errs) > 0 {
			return nil, &ValidationError{Kind: KindSlug, Value: sig.Value, Errors: errs}
		}
		t, err = provider.GetBySlug(ctx, sig.Value)
	case KindDomain:
		if errs := ValidateDomain(sig.Value); len(errs) > 0 {
			return nil, &ValidationError{Kind: KindDomain, Value: sig.Value, Errors: errs}
		}
		t, err = provider.GetByDomain(ctx, sig.Value)
	default:
		return nil, fmt.Errorf("%w: unknown signal kind %q", ErrInvalidIdentifier, sig.Kind)
	}
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}
	if !t.Usable() {
		return t, ErrInactiveTenant
	}
	return t, nil
}

// DefaultTenant returns the oldest active tenant for public endpoints that
// expect no tenant signal. When none exists the result is ErrNoActiveTenant.
func DefaultTenant(ctx context.Context, provider Provider) (*Tenant, error) {
	t, err := provider.OldestActive(ctx)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrNoActiveTenant
		}
		return nil, err
	}
	if !t.Usable() {
		return nil, ErrNoActiveTenant
	}
	return t, nil
}
