package tenant

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// MaxDomainLength is the longest DNS name accepted as a custom domain.
const MaxDomainLength = 253

// domainPattern is an RFC 1035 style hostname: dot separated labels of 1-63
// alphanumerics or hyphens, not starting or ending with a hyphen, and an
// alphabetic top-level label.
var domainPattern = regexp.MustCompile(`^(?i)(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

var reservedDomains = map[string]struct{}{
	"localhost":   {},
	"example.com": {},
	"example.org": {},
	"example.net": {},
	"test.com":    {},
	"dev.com":     {},
	"local":       {},
	"invalid":     {},
}

// ValidateDomain checks d as a custom tenant domain and returns every
// violation as a human-readable message. An empty result means d is valid.
func ValidateDomain(d string) []string {
	d = strings.ToLower(strings.TrimSpace(d))
	if d == "" {
		return []string{"domain is required"}
	}

	var errs []string
	if len(d) > MaxDomainLength {
		errs = append(errs, fmt.Sprintf("domain must be at most %d characters long", MaxDomainLength))
	}
	if isIPv4(d) {
		errs = append(errs, "domain must not be an IP address")
	} else if !domainPattern.MatchString(d) {
		errs = append(errs, "domain is not a valid hostname")
	}
	if _, ok := reservedDomains[d]; ok {
		errs = append(errs, fmt.Sprintf("domain %q is reserved", d))
	}
	return errs
}

// IsValidDomain reports whether ValidateDomain finds no violations.
func IsValidDomain(d string) bool {
	return len(ValidateDomain(d)) == 0
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}

func isIP(s string) bool {
	return net.ParseIP(strings.Trim(s, "[]")) != nil
}

// stripPort removes a trailing :port, keeping IPv6 literals intact.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}
