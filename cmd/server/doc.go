// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Command server runs the FocusGuard proctoring service.

Startup order:

 1. .env file (optional), then configuration through koanf
 2. zerolog logging
 3. Session store: DuckDB, PostgreSQL or in-memory
 4. Badger WAL for queued events (when enabled)
 5. Event queue delivering detector anomalies to the recorder
 6. Event bus: in-process GoChannel or NATS JetStream, optionally with an
    embedded NATS server
 7. WebSocket hub and bus consumers (dashboard bridge, webhook)
 8. Session monitor manager
 9. HTTP API

Every long-running component is a suture service; SIGINT or SIGTERM cancels
the tree, after which the bus, WAL and store are closed in that order.
*/
package main
