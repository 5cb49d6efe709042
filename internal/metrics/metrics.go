package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics interface {
	// ObserveHTTPRequestDuration records the duration of an HTTP request.
	ObserveHTTPRequestDuration(handler, method, status string, duration float64)

	// ObserveStoreOperation records the duration of a repository call.
	ObserveStoreOperation(operation string, success bool, duration float64)

	// AddNotificationsCreated counts stored notifications by type.
	AddNotificationsCreated(notificationType string)

	// AddNotificationsPruned counts notifications removed by retention.
	AddNotificationsPruned(count int64)
}

type prometheusMetrics struct {
	httpDuration  *prometheus.HistogramVec
	storeDuration *prometheus.HistogramVec
	created       *prometheus.CounterVec
	pruned        prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) Metrics {
	pm := &prometheusMetrics{
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "method", "status"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Duration of notification store operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "success"},
		),
		created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_created_total",
				Help: "Number of notifications stored",
			},
			[]string{"type"},
		),
		pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "notifications_pruned_total",
				Help: "Number of notifications removed by retention",
			},
		),
	}
	reg.MustRegister(pm.httpDuration, pm.storeDuration, pm.created, pm.pruned)
	return pm
}

// NewDefault registers on the global registry served by promhttp.Handler.
func NewDefault() Metrics {
	return New(prometheus.DefaultRegisterer)
}

func (pm *prometheusMetrics) ObserveHTTPRequestDuration(handler, method, status string, duration float64) {
	pm.httpDuration.
		With(prometheus.Labels{
			"handler": handler,
			"method":  method,
			"status":  status,
		}).
		Observe(duration)
}

func (pm *prometheusMetrics) ObserveStoreOperation(operation string, success bool, duration float64) {
	pm.storeDuration.
		With(prometheus.Labels{
			"operation": operation,
			"success":   strconv.FormatBool(success),
		}).
		Observe(duration)
}

func (pm *prometheusMetrics) AddNotificationsCreated(notificationType string) {
	pm.created.WithLabelValues(notificationType).Inc()
}

func (pm *prometheusMetrics) AddNotificationsPruned(count int64) {
	if count > 0 {
		pm.pruned.Add(float64(count))
	}
}

// Ensure prometheusMetrics satisfies the Metrics interface.
var _ Metrics = (*prometheusMetrics)(nil)
