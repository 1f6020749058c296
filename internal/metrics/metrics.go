package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the insight service.
type Metrics struct {
	// Vendor API metrics
	VendorRequests *prometheus.CounterVec
	VendorLatency  *prometheus.HistogramVec
	VendorRetries  *prometheus.CounterVec

	// Sync metrics
	SyncRuns      *prometheus.CounterVec
	SyncDuration  prometheus.Histogram
	SyncCampaigns *prometheus.CounterVec
	LastSyncTime  prometheus.Gauge

	// Derivation metrics
	Transforms         prometheus.Counter
	ValidationFailures *prometheus.CounterVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// System metrics
	ActiveCampaigns prometheus.Gauge
	DBConnections   *prometheus.GaugeVec
}

var (
	// DefaultMetrics is the global metrics instance
	DefaultMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		// Vendor API metrics
		VendorRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vendor_requests_total",
				Help:      "Total requests to external vendor APIs",
			},
			[]string{"vendor", "status"},
		),
		VendorLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "vendor_latency_seconds",
				Help:      "Vendor API request latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"vendor"},
		),
		VendorRetries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vendor_retries_total",
				Help:      "Vendor API requests retried after transient failures",
			},
			[]string{"vendor"},
		),

		// Sync metrics
		SyncRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Sync runs by terminal status",
			},
			[]string{"status"},
		),
		SyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Wall-clock duration of sync runs",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		SyncCampaigns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_campaigns_total",
				Help:      "Campaigns processed during sync by outcome",
			},
			[]string{"outcome"},
		),
		LastSyncTime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_sync_timestamp_seconds",
				Help:      "Unix timestamp of the last completed sync run",
			},
		),

		// Derivation metrics
		Transforms: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transforms_total",
				Help:      "Raw insight records normalized",
			},
		),
		ValidationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failures_total",
				Help:      "Invariant violations found in normalized metrics",
			},
			[]string{"rule"},
		),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Snapshot cache hits",
			},
			[]string{"cache"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Snapshot cache misses",
			},
			[]string{"cache"},
		),

		// HTTP metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_latency_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Rate limit rejections",
			},
			[]string{"endpoint", "ip"},
		),

		// System metrics
		ActiveCampaigns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_campaigns",
				Help:      "Number of active campaigns",
			},
		),
		DBConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections",
				Help:      "Database connection pool stats",
			},
			[]string{"state"}, // idle, in_use, total
		),
	}

	DefaultMetrics = m
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordVendorRequest records a vendor API call and its latency.
func (m *Metrics) RecordVendorRequest(vendor, status string, latency time.Duration) {
	m.VendorRequests.WithLabelValues(vendor, status).Inc()
	m.VendorLatency.WithLabelValues(vendor).Observe(latency.Seconds())
}

// RecordVendorRetry records a retried vendor API request.
func (m *Metrics) RecordVendorRetry(vendor string) {
	m.VendorRetries.WithLabelValues(vendor).Inc()
}

// RecordSyncRun records a finished sync run.
func (m *Metrics) RecordSyncRun(status string, duration time.Duration) {
	m.SyncRuns.WithLabelValues(status).Inc()
	m.SyncDuration.Observe(duration.Seconds())
	m.LastSyncTime.SetToCurrentTime()
}

// RecordSyncCampaign records a campaign processed during sync.
func (m *Metrics) RecordSyncCampaign(outcome string) {
	m.SyncCampaigns.WithLabelValues(outcome).Inc()
}

// RecordTransform records a normalized insight record.
func (m *Metrics) RecordTransform() {
	m.Transforms.Inc()
}

// RecordValidationFailure records one invariant violation.
func (m *Metrics) RecordValidationFailure(rule string) {
	m.ValidationFailures.WithLabelValues(rule).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMisses.WithLabelValues(cache).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordRateLimitHit records a rate limit hit.
func (m *Metrics) RecordRateLimitHit(endpoint, ip string) {
	m.RateLimitHits.WithLabelValues(endpoint, ip).Inc()
}

// UpdateDBStats updates database connection metrics.
func (m *Metrics) UpdateDBStats(idle, inUse, total int) {
	m.DBConnections.WithLabelValues("idle").Set(float64(idle))
	m.DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues("total").Set(float64(total))
}

// UpdateActiveCampaigns updates the active campaign count.
func (m *Metrics) UpdateActiveCampaigns(n int) {
	m.ActiveCampaigns.Set(float64(n))
}
