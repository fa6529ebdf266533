package tenant

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes recorded by Metrics.
const (
	outcomeCached    = "cached"
	outcomeFound     = "found"
	outcomeTrusted   = "trusted"
	outcomeNotFound  = "not_found"
	outcomeInactive  = "inactive"
	outcomeInvalid   = "invalid"
	outcomeNoDefault = "no_default"
	outcomeError     = "error"
)

// Metrics exposes Prometheus collectors for tenant resolution.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	signals  *prometheus.CounterVec
	lookups  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves the collectors unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		signals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant",
			Name:      "signals_total",
			Help:      "Tenant signals detected per request, by source.",
		}, []string{"source"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tenant",
			Name:      "lookups_total",
			Help:      "Tenant lookups by signal kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tenant",
			Name:      "lookup_duration_seconds",
			Help:      "Time spent loading tenants from the provider.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

func (m *Metrics) signal(sig Signal) {
	if m == nil {
		return
	}
	source := string(sig.Source)
	if !sig.Resolved() {
		source = "none"
	}
	m.signals.WithLabelValues(source).Inc()
}

func (m *Metrics) lookup(kind Kind, outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(string(kind), outcome).Inc()
}

func (m *Metrics) observe(kind Kind, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}
