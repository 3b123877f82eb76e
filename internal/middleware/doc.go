// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package middleware provides the HTTP middleware shared by every route:
// request ID propagation into the logging context, access logging, and
// Prometheus request metrics labeled by chi route pattern.
package middleware
