// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package eventqueue delivers detector events to the session recorder
// without ever blocking the frame loop.
//
// Enqueue is a non-blocking channel send; when the buffer is full the event
// is dropped and counted. Workers deliver through a circuit breaker and retry
// transient failures with capped exponential backoff. After MaxAttempts the
// event is dropped and logged. Events the recorder rejects outright (unknown
// session, malformed event) are dropped without retry.
//
// With a write-ahead log attached, each event is persisted before its first
// delivery attempt and removed once delivered, so events still pending at
// shutdown or crash are replayed by the next Serve.
package eventqueue
