// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/testinfra"
)

func TestPostgresStore(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("failed to start postgres: %v", err)
	}
	defer testinfra.CleanupContainer(t, pg)

	db, err := Open(config.DatabaseConfig{Driver: DriverPostgres, DSN: pg.DSN, QueryTimeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeQuietly(db)

	r := recorder.New(db)
	s, err := r.StartSession(ctx, "Barbara")
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"No face detected for 10.0 seconds", "Face detected again"} {
		if _, err := r.LogEvent(ctx, s.ID, detection.TypeAlert, msg); err != nil {
			t.Fatal(err)
		}
	}
	ended, err := r.EndSession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ended.Summary.NoFaceEvents != 1 || ended.Summary.TotalEvents != 3 {
		t.Errorf("summary = %+v", ended.Summary)
	}

	// migrations are idempotent
	if err := migrate(db.conn); err != nil {
		t.Errorf("second migrate: %v", err)
	}
}
