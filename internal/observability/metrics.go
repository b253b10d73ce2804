// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the gatehouse service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// Alert outcomes recorded by AlertsTotal.
const (
	AlertSent    = "sent"
	AlertFailed  = "failed"
	AlertDropped = "dropped"
)

var (
	// RequestsTotal counts all HTTP requests by method, route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route pattern.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatehouse_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ErrorsTotal counts failures handled by the error handler by kind and status code.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_errors_total",
			Help: "Failures converted into error responses",
		},
		[]string{"kind", "status"},
	)

	// AlertsTotal counts server error alerts by outcome (sent, failed, dropped).
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_alerts_total",
			Help: "Server error alerts",
		},
		[]string{"outcome"},
	)

	// AlertQueueDepth tracks alerts waiting to be sent.
	AlertQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatehouse_alert_queue_depth",
			Help: "Alerts waiting to be sent",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		ErrorsTotal,
		AlertsTotal,
		AlertQueueDepth,
	)
}
