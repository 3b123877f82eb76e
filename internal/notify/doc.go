// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package notify holds the event bus consumers that forward anomalies out
// of the process: the dashboard websocket bridge and an outbound webhook.
// Each exposes a Handle method matching eventbus.Handler; wrap it in Once
// to skip redeliveries.
package notify
