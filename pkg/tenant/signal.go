package tenant

import "log/slog"

// Source tells where in the request a tenant signal was found.
type Source string

const (
	SourceHeader    Source = "header"
	SourceSubdomain Source = "subdomain"
	SourceDomain    Source = "domain"
	SourceQuery     Source = "query"
	SourceBody      Source = "body"
	SourceDefault   Source = "default"
)

// Kind tells how a signal value identifies a tenant.
type Kind string

const (
	KindID     Kind = "id"
	KindSlug   Kind = "slug"
	KindDomain Kind = "domain"
)

// Signal is one piece of evidence about the requesting tenant.
// The zero value means no signal was found.
type Signal struct {
	Source Source `json:"source,omitempty"`
	Kind   Kind   `json:"kind,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Resolved reports whether the signal carries a value.
func (s Signal) Resolved() bool {
	return s.Source != "" && s.Value != ""
}

// Trusted reports whether the signal is a tenant id set by the gateway header.
func (s Signal) Trusted() bool {
	return s.Source == SourceHeader && s.Kind == KindID
}

// cacheKey identifies the looked up tenant independently of the source.
func (s Signal) cacheKey() string {
	return string(s.Kind) + ":" + s.Value
}

// LogValue implements slog.LogValuer.
func (s Signal) LogValue() slog.Value {
	if !s.Resolved() {
		return slog.StringValue("unresolved")
	}
	return slog.GroupValue(
		slog.String("source", string(s.Source)),
		slog.String("kind", string(s.Kind)),
		slog.String("value", s.Value),
	)
}
