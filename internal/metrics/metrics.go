package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	tenantResolutions *prometheus.CounterVec
	directoryFailures prometheus.Counter
	ambiguousHosts    prometheus.Counter
	rateLimitAllowed  *prometheus.CounterVec
	rateLimitDenied   *prometheus.CounterVec
}

// New registers the warden instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		tenantResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_tenant_resolutions_total",
			Help: "Tenant resolutions by outcome source.",
		}, []string{"source"}),
		directoryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_tenant_directory_failures_total",
			Help: "Tenant directory lookups that failed and fell through.",
		}),
		ambiguousHosts: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_tenant_ambiguous_hosts_total",
			Help: "Hosts whose lookup keys matched more than one tenant.",
		}),
		rateLimitAllowed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_rate_limit_allowed_total",
			Help: "Rate limit checks that admitted the request.",
		}, []string{"scope"}),
		rateLimitDenied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_rate_limit_denied_total",
			Help: "Rate limit checks that rejected the request.",
		}, []string{"scope"}),
	}
}

// NewDefault registers on the default prometheus registry served by /metrics.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// RecordResolution counts a resolution outcome by source
// (directory, reserved, dev_fallback, subdomain, custom_domain, not_found).
func (m *Metrics) RecordResolution(source string) {
	if m == nil {
		return
	}
	m.tenantResolutions.WithLabelValues(source).Inc()
}

// RecordDirectoryFailure counts a directory lookup that failed.
func (m *Metrics) RecordDirectoryFailure() {
	if m == nil {
		return
	}
	m.directoryFailures.Inc()
}

// RecordAmbiguousHost counts a host matching multiple tenants.
func (m *Metrics) RecordAmbiguousHost() {
	if m == nil {
		return
	}
	m.ambiguousHosts.Inc()
}

// RecordRateLimitAllowed counts an admitted rate limit check.
func (m *Metrics) RecordRateLimitAllowed(scope string) {
	if m == nil {
		return
	}
	m.rateLimitAllowed.WithLabelValues(scope).Inc()
}

// RecordRateLimitDenied counts a rejected rate limit check.
func (m *Metrics) RecordRateLimitDenied(scope string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(scope).Inc()
}
