// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// @title FocusGuard API
// @version 1.0
// @description Interview proctoring: session lifecycle, anomaly event log, live
// @description observation ingest and per-session reports.
// @description
// @description ## Rate Limiting
// @description
// @description Session and event endpoints are limited per client IP. Observation
// @description ingest is limited per session.
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api

package main
