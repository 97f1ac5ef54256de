package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the dedicated registry served on /api/metrics
var Registry = prometheus.NewRegistry()

var (
	// Custom histogram buckets optimized for API response times ranging from
	// milliseconds to 30+ seconds, which covers Zoom API calls and DB work
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = newHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = newCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = newGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Meeting provider client metrics
	ZoomRequestDuration = newHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zoom_client_operation_duration_seconds",
			Help:    "Zoom API operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	ZoomRequestTotal = newCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_client_operation_total",
			Help: "Total number of Zoom API operations",
		},
		[]string{"operation", "status"},
	)

	ZoomTokenCacheHits = newCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_token_cache_total",
			Help: "Zoom access token cache lookups",
		},
		[]string{"result"},
	)

	// Database client metrics
	DBOperationDuration = newHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	// Business metrics
	RequestSubmissions = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_request_submissions_total",
			Help: "Total number of mentorship request submissions",
		},
		[]string{"status"},
	)

	RequestStatusUpdates = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_request_status_updates_total",
			Help: "Total number of request status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	Confirmations = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_confirmations_total",
			Help: "Total number of mentorship confirmation attempts",
		},
		[]string{"status"},
	)

	ConfirmationDuration = newHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mentoria_confirmation_duration_seconds",
			Help:    "End-to-end confirmation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{},
	)

	ConsistencyAlerts = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_consistency_alerts_total",
			Help: "External meeting created but local persistence failed",
		},
		[]string{},
	)

	// Notification metrics
	NotificationsEnqueued = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_notifications_enqueued_total",
			Help: "Total number of mail jobs enqueued",
		},
		[]string{"kind"},
	)

	NotificationsDeduplicated = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_notifications_deduplicated_total",
			Help: "Confirmation signals dropped by the idempotency lock",
		},
		[]string{},
	)

	MailJobsProcessed = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_mail_jobs_processed_total",
			Help: "Total number of mail jobs processed by queue workers",
		},
		[]string{"status"},
	)

	MailQueueDepth = newGaugeVec(
		prometheus.GaugeOpts{
			Name: "mentoria_mail_queue_depth",
			Help: "Number of mail jobs waiting in the queue",
		},
		[]string{},
	)

	// Document metrics
	DocumentUploads = newCounterVec(
		prometheus.CounterOpts{
			Name: "mentoria_document_uploads_total",
			Help: "Total number of CV/certificate uploads",
		},
		[]string{"status"},
	)

	// Runtime metrics
	GoroutineCount = newGaugeVec(
		prometheus.GaugeOpts{
			Name: "go_app_goroutines",
			Help: "Number of running goroutines",
		},
		[]string{},
	)
)

func newCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	v := prometheus.NewCounterVec(opts, labels)
	Registry.MustRegister(v)
	return v
}

func newGaugeVec(opts prometheus.GaugeOpts, labels []string) *prometheus.GaugeVec {
	v := prometheus.NewGaugeVec(opts, labels)
	Registry.MustRegister(v)
	return v
}

func newHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	v := prometheus.NewHistogramVec(opts, labels)
	Registry.MustRegister(v)
	return v
}

// Init registers runtime collectors on the dedicated registry
func Init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// RecordInfrastructureMetrics starts a background sampler for runtime gauges
func RecordInfrastructureMetrics() {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			GoroutineCount.WithLabelValues().Set(float64(runtime.NumGoroutine()))
		}
	}()
}

// MeasureDuration returns the elapsed time since start in seconds
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
