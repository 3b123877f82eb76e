// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/focusguard/internal/config"
)

// duckdbSchema is applied on every open.
var duckdbSchema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR PRIMARY KEY,
		candidate_name VARCHAR NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		duration_ms BIGINT,
		total_events INTEGER NOT NULL DEFAULT 0,
		no_face_events INTEGER NOT NULL DEFAULT 0,
		looking_away_events INTEGER NOT NULL DEFAULT 0,
		multiple_face_events INTEGER NOT NULL DEFAULT 0,
		suspicious_object_events INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR PRIMARY KEY,
		session_id VARCHAR NOT NULL,
		ts TIMESTAMP NOT NULL,
		type VARCHAR NOT NULL,
		message VARCHAR NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session_ts ON events (session_id, ts)`,
}

func openDuckDB(cfg config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	path := cfg.Path
	inMemory := path == ":memory:"
	if !inMemory {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "512MB"
	}
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, threads, maxMemory)
	if !inMemory {
		connStr += "&access_mode=read_write"
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// each connection to :memory: would otherwise see its own empty database
	if inMemory {
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, driver: DriverDuckDB, queryTimeout: cfg.QueryTimeout}
	if err := db.createDuckDBSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func (db *DB) createDuckDBSchema() error {
	ctx, cancel := db.withTimeout(context.Background())
	defer cancel()
	for _, stmt := range duckdbSchema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
