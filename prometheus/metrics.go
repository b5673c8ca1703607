package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peopledesk_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Tenant resolution counter
	TenantResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peopledesk_tenant_resolutions_total",
			Help: "Total number of tenant collection resolutions",
		},
		[]string{"outcome"}, // outcome can be "ok" or "error"
	)

	// Soft delete operation counter
	SoftDeleteOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peopledesk_soft_delete_operations_total",
			Help: "Total number of soft delete layer operations",
		},
		[]string{"entity", "operation"}, // operation can be "soft_delete", "restore", "purge"
	)

	// User count operation counter
	UserCountOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peopledesk_user_count_operations_total",
			Help: "Total number of company user count operations",
		},
		[]string{"operation"}, // operation can be "increment", "decrement", "sync", "sync_all"
	)

	// Error counter
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "peopledesk_errors_total",
			Help: "Total number of request handling errors",
		},
		[]string{"type"}, // type can be "validation", "not_found", "db_error" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "peopledesk_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "peopledesk_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Cached tenant handles
	CachedTenantsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "peopledesk_cached_tenant_handles",
			Help: "Number of tenant database handles currently cached",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "peopledesk_info",
			Help: "Information about the PeopleDesk backend",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(TenantResolutionCounter)
	prometheus.MustRegister(SoftDeleteOperationCounter)
	prometheus.MustRegister(UserCountOperationCounter)
	prometheus.MustRegister(ErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(CachedTenantsGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordTenantResolution records a tenant resolution attempt
func RecordTenantResolution(outcome string) {
	TenantResolutionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordSoftDeleteOperation records a soft delete layer operation
func RecordSoftDeleteOperation(entity, operation string) {
	SoftDeleteOperationCounter.With(prometheus.Labels{
		"entity":    entity,
		"operation": operation,
	}).Inc()
}

// RecordUserCountOperation records a company user count operation
func RecordUserCountOperation(operation string) {
	UserCountOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordError records a request handling error by type
func RecordError(errorType string) {
	ErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// UpdateCachedTenants updates the cached tenant handles gauge
func UpdateCachedTenants(count int) {
	CachedTenantsGauge.Set(float64(count))
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}
