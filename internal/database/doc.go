// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package database implements recorder.Store on DuckDB (embedded, the default)
// and PostgreSQL.
//
// Both backends share the same SQL for reads and writes; only connection
// setup and schema management differ. DuckDB creates its schema inline on
// open. PostgreSQL applies the goose migrations embedded from migrations/.
//
// Every query runs under the configured query timeout.
package database
