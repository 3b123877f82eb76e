// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/recorder"
)

const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DB is a SQL-backed recorder.Store.
type DB struct {
	conn         *sql.DB
	driver       string
	queryTimeout time.Duration
}

var _ recorder.Store = (*DB)(nil)

// Open connects to the database selected by cfg.Driver and ensures the
// schema exists.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case DriverDuckDB:
		db, err = openDuckDB(cfg)
	case DriverPostgres:
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logging.Info().Str("driver", cfg.Driver).Msg("Database opened")
	return db, nil
}

// OpenStore returns the recorder.Store for cfg. The memory driver needs no
// connection.
func OpenStore(cfg config.DatabaseConfig) (recorder.Store, error) {
	if cfg.Driver == DriverMemory {
		logging.Warn().Msg("Using in-memory session store, data will not survive a restart")
		return recorder.NewMemoryStore(), nil
	}
	return Open(cfg)
}

// Driver returns the backend name.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.conn.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// closeQuietly closes a resource in error paths where the Close error is not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
