// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package metrics provides Prometheus collectors for FocusGuard.

All collectors are registered with the default registry through promauto and
exposed at /metrics.

# Available Metrics

Detection:
  - focusguard_frames_processed_total: frames run through a detector
  - focusguard_anomaly_events_total: emitted events (labels: category, type)
  - focusguard_object_scans_total: object scans (labels: result)
  - focusguard_oracle_errors_total: failed oracle calls (labels: oracle)
  - focusguard_frame_processing_seconds: per-frame processing latency
  - focusguard_clamped_timestamps_total: out-of-order frames clamped
  - focusguard_active_monitors: running session monitors

Database:
  - db_query_duration_seconds, db_query_errors_total (labels: operation, table)

Recorder delivery:
  - focusguard_queue_depth, focusguard_queue_enqueued_total,
    focusguard_queue_dropped_total (labels: reason),
    focusguard_queue_delivered_total, focusguard_queue_retries_total,
    focusguard_wal_operations_total (labels: operation)

HTTP and push:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - websocket_connections, websocket_messages_sent_total
  - focusguard_webhook_deliveries_total (labels: result)
  - focusguard_bus_published_total (labels: result)

Circuit breakers:
  - circuit_breaker_state (labels: name), circuit_breaker_state_transitions_total
*/
package metrics
