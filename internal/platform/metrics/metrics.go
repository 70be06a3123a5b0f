// Package metrics registers the process Prometheus metrics. One Metrics
// value satisfies the observer interfaces declared by the tenancy resolver,
// the authorization guard, the cache wrapper and the workflow services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	TenantResolutions        *prometheus.CounterVec
	TenantResolutionFailures prometheus.Counter
	AuthzDenials             *prometheus.CounterVec
	CacheHits                prometheus.Counter
	CacheMisses              prometheus.Counter
	WorkflowTransitions      *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TenantResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_tenant_resolutions_total",
			Help: "Tenant resolutions by strategy that produced the school id",
		}, []string{"strategy"}),
		TenantResolutionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campus_tenant_resolution_failures_total",
			Help: "Requests for which every resolution fallback was exhausted",
		}),
		AuthzDenials: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campus_authz_denials_total",
			Help: "Authorization denials by reason",
		}, []string{"reason"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campus_cache_hits_total",
			Help: "Cache-aside reads served from redis",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campus_cache_misses_total",
			Help: "Cache-aside reads that fell through to the loader",
		}),
		WorkflowTransitions: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campus_workflow_transition_seconds",
			Help:    "Workflow transition duration by request kind",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// ObserveResolution counts a successful tenant resolution.
func (m *Metrics) ObserveResolution(strategy string) {
	m.TenantResolutions.WithLabelValues(strategy).Inc()
}

// ObserveResolutionFailure counts an exhausted fallback chain.
func (m *Metrics) ObserveResolutionFailure() {
	m.TenantResolutionFailures.Inc()
}

// ObserveDenial counts an authorization denial.
func (m *Metrics) ObserveDenial(reason string) {
	m.AuthzDenials.WithLabelValues(reason).Inc()
}

// ObserveCacheHit counts a cache hit.
func (m *Metrics) ObserveCacheHit() { m.CacheHits.Inc() }

// ObserveCacheMiss counts a cache miss.
func (m *Metrics) ObserveCacheMiss() { m.CacheMisses.Inc() }

// ObserveTransition records a workflow transition duration.
func (m *Metrics) ObserveTransition(kind string, start time.Time) {
	m.WorkflowTransitions.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
