// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package testinfra provides container-backed fixtures for integration tests.
//
// All files carry the integration build tag; run with:
//
//	go test -tags integration ./...
//
// # PostgreSQL
//
//	pg, err := testinfra.NewPostgresContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, pg)
//	db, err := database.Open(config.DatabaseConfig{Driver: "postgres", DSN: pg.DSN})
//
// # NATS
//
// NewNATSContainer starts a JetStream-enabled server and exposes its client URL.
//
// # Webhooks
//
// MockWebhookServer captures HTTP deliveries for later assertions.
//
// Tests skip when Docker is unavailable (see SkipIfNoDocker).
package testinfra
