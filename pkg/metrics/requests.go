package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records outcomes of calls made against the storefront API.
type RequestMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewRequestMetrics registers the API request metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewRequestMetrics(reg prometheus.Registerer) *RequestMetrics {
	if reg == nil {
		return &RequestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_api_request_duration_seconds",
		Help:    "Duration of storefront API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_request_success",
		Help: "Successful storefront API requests.",
	}, []string{"endpoint", "method"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_request_failure",
		Help: "Failed storefront API requests.",
	}, []string{"endpoint", "method", "code"})
	reg.MustRegister(duration, success, failure)
	return &RequestMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the endpoint.
func (m *RequestMetrics) ObserveDuration(endpoint, method string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(NormalizeEndpoint(endpoint), method).Observe(duration.Seconds())
}

func (m *RequestMetrics) IncSuccess(endpoint, method string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(NormalizeEndpoint(endpoint), method).Inc()
}

// IncFailure counts a failed call; code is the typed error code.
func (m *RequestMetrics) IncFailure(endpoint, method, code string) {
	if m == nil || m.failure == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.failure.WithLabelValues(NormalizeEndpoint(endpoint), method, code).Inc()
}

// NormalizeEndpoint strips the query string and collapses identifier segments so
// label cardinality stays bounded: /products/abc123?x=1 becomes /products/:id.
func NormalizeEndpoint(endpoint string) string {
	if endpoint == "" {
		return "unknown"
	}
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, part := range parts {
		if looksLikeID(part) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

func looksLikeID(segment string) bool {
	if len(segment) < 6 && !isAllDigits(segment) {
		return false
	}
	digits := 0
	for _, r := range segment {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > 0
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
