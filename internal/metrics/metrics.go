// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Detection Metrics
	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusguard_frames_processed_total",
			Help: "Total number of frames processed by session detectors",
		},
	)

	AnomalyEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_anomaly_events_total",
			Help: "Total number of detector events emitted",
		},
		[]string{"category", "type"},
	)

	ObjectScans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_object_scans_total",
			Help: "Object detection scans by outcome",
		},
		[]string{"result"}, // "completed", "dropped", "failed"
	)

	OracleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_oracle_errors_total",
			Help: "Total number of failed oracle calls",
		},
		[]string{"oracle"},
	)

	FrameProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "focusguard_frame_processing_seconds",
			Help:    "Time spent capturing and evaluating a single frame",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	ClampedTimestamps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusguard_clamped_timestamps_total",
			Help: "Frames whose timestamp was earlier than the previous frame",
		},
	)

	ActiveMonitors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusguard_active_monitors",
			Help: "Current number of running session monitors",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of session store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of session store query errors",
		},
		[]string{"operation", "table"},
	)

	// Recorder Queue Metrics
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "focusguard_queue_depth",
			Help: "Events waiting for delivery to the session recorder",
		},
	)

	QueueEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusguard_queue_enqueued_total",
			Help: "Total number of events accepted by the recorder queue",
		},
	)

	QueueDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_queue_dropped_total",
			Help: "Total number of events dropped by the recorder queue",
		},
		[]string{"reason"}, // "full", "closed", "exhausted", "expired"
	)

	QueueDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusguard_queue_delivered_total",
			Help: "Total number of events persisted by the session recorder",
		},
	)

	QueueRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "focusguard_queue_retries_total",
			Help: "Total number of delivery retries",
		},
	)

	WALOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_wal_operations_total",
			Help: "Write-ahead log operations",
		},
		[]string{"operation"}, // "write", "confirm", "retry"
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	// Notification Metrics
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_webhook_deliveries_total",
			Help: "Webhook deliveries by result",
		},
		[]string{"result"},
	)

	BusPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focusguard_bus_published_total",
			Help: "Anomaly messages offered to the event bus by result (success, failure, dropped)",
		},
		[]string{"result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAnomaly counts one detector event.
func RecordAnomaly(category, eventType string) {
	AnomalyEvents.WithLabelValues(category, eventType).Inc()
}

// RecordFrame records one processed frame.
func RecordFrame(duration time.Duration) {
	FramesProcessed.Inc()
	FrameProcessingDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBreakerTransition updates breaker gauges. state follows the
// gobreaker ordering: 0 closed, 1 half-open, 2 open.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// Result converts an error into a "success"/"failure" label value.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
