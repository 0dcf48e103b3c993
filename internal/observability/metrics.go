package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	auditRecordsTotal  *prometheus.CounterVec
	auditFailuresTotal *prometheus.CounterVec
	accessThrottled    prometheus.Counter
	deviceCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the audited
// HTTP surfaces and the audit pipeline itself.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests served on the admin and auth API surfaces.",
		}, []string{"scope", "method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency distribution for admin and auth API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"scope", "method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Error responses returned on the admin and auth API surfaces.",
		}, []string{"scope", "method", "route", "status"})

		auditRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Total number of activity records persisted.",
		}, []string{"category", "event"})

		auditFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_failures_total",
			Help: "Total number of swallowed audit persistence failures.",
		}, []string{"category"})

		accessThrottled = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_access_throttled_total",
			Help: "Access log entries suppressed by the per-actor throttle.",
		})

		deviceCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_cache_lookups_total",
			Help: "Device detail cache lookups by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			auditRecordsTotal,
			auditFailuresTotal,
			accessThrottled,
			deviceCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter for the audited surfaces.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for the audited surfaces.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error counter for the audited surfaces.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuditRecords exposes the counter for persisted activity records.
func AuditRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return auditRecordsTotal
}

// AuditFailures exposes the counter for swallowed audit failures.
func AuditFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return auditFailuresTotal
}

// AccessThrottled exposes the counter for suppressed access entries.
func AccessThrottled() prometheus.Counter {
	RegisterMetrics()
	return accessThrottled
}

// DeviceCacheLookups exposes the cache hit/miss counter.
func DeviceCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return deviceCacheLookups
}
