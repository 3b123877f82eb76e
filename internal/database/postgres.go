// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func openPostgres(cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	db := &DB{conn: conn, driver: DriverPostgres, queryTimeout: cfg.QueryTimeout}
	if err := db.Ping(context.Background()); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := migrate(conn); err != nil {
		closeQuietly(conn)
		return nil, err
	}
	return db, nil
}

func migrate(conn *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	version, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logging.Info().Int64("schema_version", version).Msg("Database migrations applied")
	return nil
}

// gooseLogger routes goose output through the service logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logging.Debug().Str("component", "goose").Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logging.Error().Str("component", "goose").Msgf(format, v...)
}
