package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	adminActionsTotal   *prometheus.CounterVec
	materialUploads     *prometheus.CounterVec
	materialRejected    *prometheus.CounterVec
	inboxSubscribers    prometheus.Gauge
	inboxDeliveries     *prometheus.CounterVec
	adGateTransitions   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		adminActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "admin_actions_total",
			Help:      "Privileged actions executed, by action and outcome.",
		}, []string{"action", "outcome"})

		materialUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "course_material_uploads_total",
			Help:      "Course materials stored, by detected MIME type.",
		}, []string{"mime"})

		materialRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "course_material_rejected_total",
			Help:      "Course materials rejected before storage, by reason.",
		}, []string{"reason"})

		inboxSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lumora",
			Name:      "inbox_subscribers_active",
			Help:      "Open realtime inbox connections on this node.",
		})

		inboxDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "inbox_deliveries_total",
			Help:      "Private messages fanned out to subscribers, by origin.",
		}, []string{"origin"})

		adGateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lumora",
			Name:      "ad_gate_transitions_total",
			Help:      "Ad-gate stage events, by stage and event.",
		}, []string{"stage", "event"})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			adminActionsTotal,
			materialUploads,
			materialRejected,
			inboxSubscribers,
			inboxDeliveries,
			adGateTransitions,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// AdminActions exposes the privileged action outcome counter.
func AdminActions() *prometheus.CounterVec {
	RegisterMetrics()
	return adminActionsTotal
}

// MaterialUploads exposes the stored course material counter.
func MaterialUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return materialUploads
}

// MaterialRejected exposes the rejected course material counter.
func MaterialRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return materialRejected
}

// InboxSubscribers exposes the active inbox connection gauge.
func InboxSubscribers() prometheus.Gauge {
	RegisterMetrics()
	return inboxSubscribers
}

// InboxDeliveries exposes the inbox fan-out counter.
func InboxDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return inboxDeliveries
}

// AdGateTransitions exposes the ad-gate stage event counter.
func AdGateTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return adGateTransitions
}
