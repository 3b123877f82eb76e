// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package api exposes the HTTP surface of FocusGuard.

Routes are served by chi and grouped by concern:

	/api/session     start, end, details and report of interview sessions
	/api/event       manual event logging and per-session event listing
	/api/monitor     observation ingest (HTTP and websocket) and detector state
	/api/ws          dashboard websocket for live anomalies
	/api/health      liveness and readiness probes
	/metrics         Prometheus exposition
	/swagger/*       API documentation

Every JSON body carries a "success" flag. Failures add a "message" and, for
validation failures, a per-field "errors" map:

	{"success": false, "message": "sessionId must be a 24-character hex id",
	 "errors": {"sessionId": "sessionId must be a 24-character hex id"}}

Observation ingest is rate limited per session with golang.org/x/time/rate;
the remaining groups use httprate per client IP.
*/
package api
