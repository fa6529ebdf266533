package tenant

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"strings"
)

const (
	// HeaderTenantID carries a tenant id set by the internal gateway. It is trusted.
	HeaderTenantID = "X-Tenant-ID"
	// HeaderTenantSlug carries a tenant slug that still has to be looked up.
	HeaderTenantSlug = "X-Tenant-Slug"
)

// fieldNames are checked in order in both the query string and the JSON body.
var fieldNames = [...]string{"tenantId", "tenant"}

// subdomainPattern matches a 3-50 character slug candidate taken from the host.
var subdomainPattern = regexp.MustCompile(`^(?i)[a-z0-9][a-z0-9-]{1,48}[a-z0-9]$`)

// Resolver detects the tenant signal of a request.
// Detection follows a strict priority order and stops at the first match:
//
//  1. X-Tenant-ID header (tenant id)
//  2. X-Tenant-Slug header (slug)
//  3. host subdomain (slug)
//  4. custom domain (the full host)
//  5. query parameters tenantId, tenant (tenant id)
//  6. JSON body fields tenantId, tenant (tenant id)
//
// A signal that later fails lookup never causes the next source to be tried.
type Resolver struct {
	policy  compiledPolicy
	logger  *slog.Logger
	metrics *Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for debug output of matched signals.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithResolverMetrics records every detected signal source.
func WithResolverMetrics(m *Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver for the given policy.
func NewResolver(policy Policy, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		policy: policy.compile(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first tenant signal found in the request, or the zero
// Signal when there is none. If the body is inspected it is restored so
// handlers can read it again.
func (r *Resolver) Resolve(req *http.Request) Signal {
	sig := r.detect(req)

	r.metrics.signal(sig)
	if sig.Resolved() {
		r.logger.DebugContext(req.Context(), "tenant signal resolved",
			slog.String("source", string(sig.Source)),
			slog.String("kind", string(sig.Kind)),
			slog.String("value", sig.Value),
			slog.String("host", req.Host),
			slog.String("user_agent", req.UserAgent()),
		)
	} else {
		r.logger.DebugContext(req.Context(), "no tenant signal",
			slog.String("host", req.Host),
			slog.String("user_agent", req.UserAgent()),
		)
	}
	return sig
}

func (r *Resolver) detect(req *http.Request) Signal {
	if v := strings.TrimSpace(req.Header.Get(HeaderTenantID)); v != "" {
		return Signal{Source: SourceHeader, Kind: KindID, Value: v}
	}
	if v := strings.TrimSpace(req.Header.Get(HeaderTenantSlug)); v != "" {
		return Signal{Source: SourceHeader, Kind: KindSlug, Value: v}
	}

	host := normalizeHost(req.Host)
	if sub, ok := r.subdomain(host); ok {
		return Signal{Source: SourceSubdomain, Kind: KindSlug, Value: sub}
	}
	if r.customDomain(host) {
		return Signal{Source: SourceDomain, Kind: KindDomain, Value: host}
	}

	query := req.URL.Query()
	for _, name := range fieldNames {
		if v := strings.TrimSpace(query.Get(name)); v != "" {
			return Signal{Source: SourceQuery, Kind: KindID, Value: v}
		}
	}

	if v, ok := r.fromBody(req); ok {
		return Signal{Source: SourceBody, Kind: KindID, Value: v}
	}

	return Signal{}
}

// subdomain extracts a slug candidate from hosts with at least three labels.
// An ignored first label moves the candidate to the second label, which needs
// at least four labels.
func (r *Resolver) subdomain(host string) (string, bool) {
	if host == "" || isIP(host) {
		return "", false
	}

	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return "", false
	}

	candidate := labels[0]
	if _, ignored := r.policy.ignored[candidate]; ignored {
		if len(labels) < 4 {
			return "", false
		}
		candidate = labels[1]
	}

	if !subdomainPattern.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

func (r *Resolver) customDomain(host string) bool {
	if host == "" || isIP(host) || len(host) > MaxDomainLength {
		return false
	}
	if _, system := r.policy.system[host]; system {
		return false
	}
	return domainPattern.MatchString(host)
}

// fromBody reads tenantId/tenant string fields from a JSON body.
func (r *Resolver) fromBody(req *http.Request) (string, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return "", false
	}
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return "", false
	}
	if !isJSONContent(req.Header.Get("Content-Type")) {
		return "", false
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, r.policy.maxBodyBytes+1))
	req.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(data), req.Body), Closer: req.Body}
	if err != nil || len(data) == 0 || int64(len(data)) > r.policy.maxBodyBytes {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return "", false
	}

	for _, name := range fieldNames {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// replayBody serves the already consumed prefix followed by the rest of the
// original body, and closes the original.
type replayBody struct {
	io.Reader
	io.Closer
}

func isJSONContent(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = stripPort(host)
	return strings.TrimSuffix(host, ".")
}
