package tenant

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrInactiveTenant is returned when trying to use an inactive tenant.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrTenantRequired is returned when an endpoint needs a tenant and the request carries none.
	ErrTenantRequired = errors.New("tenant required")

	// ErrNoActiveTenant means the default-tenant fallback found no active tenant at all.
	// This is an operator error, not a transient failure.
	ErrNoActiveTenant = errors.New("no active tenant configured")

	// ErrLoadPolicy is returned when a policy file cannot be read or parsed.
	ErrLoadPolicy = errors.New("failed to load tenant policy")
)

// ValidationError carries the rule violations of a malformed slug or domain signal.
type ValidationError struct {
	Kind   Kind
	Value  string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid tenant %s %q: %s", e.Kind, e.Value, strings.Join(e.Errors, "; "))
}

// Unwrap lets errors.Is match ErrInvalidIdentifier.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidIdentifier
}
