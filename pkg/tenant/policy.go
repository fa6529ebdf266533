package tenant

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes limits how much of a request body is read while looking
// for tenantId/tenant fields.
const DefaultMaxBodyBytes int64 = 1 << 20

// Policy holds the host lists and limits the resolver works with.
type Policy struct {
	// IgnoredSubdomains are first labels that never name a tenant.
	IgnoredSubdomains []string `yaml:"ignored_subdomains"`

	// SystemDomains are hosts served by the platform itself, never custom domains.
	SystemDomains []string `yaml:"system_domains"`

	// MaxBodyBytes caps the body read for the body signal.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DefaultPolicy returns the built-in lists.
func DefaultPolicy() Policy {
	return Policy{
		IgnoredSubdomains: []string{"www", "api", "admin", "app", "dashboard", "localhost"},
		SystemDomains:     []string{"localhost", "127.0.0.1", "example.com", "test.com", "dev.com"},
		MaxBodyBytes:      DefaultMaxBodyBytes,
	}
}

// LoadPolicy reads a YAML policy file. Fields missing from the file keep
// their DefaultPolicy values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return p, errors.Join(ErrLoadPolicy, err)
	}

	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return p, errors.Join(ErrLoadPolicy, err)
	}

	if file.IgnoredSubdomains != nil {
		p.IgnoredSubdomains = file.IgnoredSubdomains
	}
	if file.SystemDomains != nil {
		p.SystemDomains = file.SystemDomains
	}
	if file.MaxBodyBytes != 0 {
		if file.MaxBodyBytes < 0 {
			return p, fmt.Errorf("%w: max_body_bytes must be positive", ErrLoadPolicy)
		}
		p.MaxBodyBytes = file.MaxBodyBytes
	}
	return p, nil
}

// compiledPolicy is the lookup form of a Policy.
type compiledPolicy struct {
	ignored      map[string]struct{}
	system       map[string]struct{}
	maxBodyBytes int64
}

func (p Policy) compile() compiledPolicy {
	c := compiledPolicy{
		ignored:      toSet(p.IgnoredSubdomains),
		system:       toSet(p.SystemDomains),
		maxBodyBytes: p.MaxBodyBytes,
	}
	if c.maxBodyBytes <= 0 {
		c.maxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}
