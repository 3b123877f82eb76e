// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/metrics"
	"github.com/tomtom215/focusguard/internal/recorder"
)

const sessionColumns = `id, candidate_name, start_time, end_time, duration_ms,
	total_events, no_face_events, looking_away_events, multiple_face_events, suspicious_object_events`

// CreateSession inserts a new session row.
func (db *DB) CreateSession(ctx context.Context, s *recorder.Session) (err error) {
	defer observe("insert", "sessions", time.Now(), &err)
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.CandidateName, s.StartTime.UTC(), nullTime(s.EndTime), nullInt64(s.Duration),
		s.Summary.TotalEvents, s.Summary.NoFaceEvents, s.Summary.LookingAwayEvents,
		s.Summary.MultipleFaceEvents, s.Summary.SuspiciousObjectEvents,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession loads a session without its events.
func (db *DB) GetSession(ctx context.Context, id string) (_ *recorder.Session, err error) {
	defer observe("select", "sessions", time.Now(), &err)
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var (
		s        recorder.Session
		endTime  sql.NullTime
		duration sql.NullInt64
	)
	err = db.conn.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id,
	).Scan(
		&s.ID, &s.CandidateName, &s.StartTime, &endTime, &duration,
		&s.Summary.TotalEvents, &s.Summary.NoFaceEvents, &s.Summary.LookingAwayEvents,
		&s.Summary.MultipleFaceEvents, &s.Summary.SuspiciousObjectEvents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recorder.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	s.StartTime = s.StartTime.UTC()
	if endTime.Valid {
		t := endTime.Time.UTC()
		s.EndTime = &t
	}
	if duration.Valid {
		d := duration.Int64
		s.Duration = &d
	}
	s.Events = []recorder.Event{}
	return &s, nil
}

// UpdateSession persists the end time, duration and summary of a session.
func (db *DB) UpdateSession(ctx context.Context, s *recorder.Session) (err error) {
	defer observe("update", "sessions", time.Now(), &err)
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET candidate_name = $2, end_time = $3, duration_ms = $4,
			total_events = $5, no_face_events = $6, looking_away_events = $7,
			multiple_face_events = $8, suspicious_object_events = $9
		WHERE id = $1`,
		s.ID, s.CandidateName, nullTime(s.EndTime), nullInt64(s.Duration),
		s.Summary.TotalEvents, s.Summary.NoFaceEvents, s.Summary.LookingAwayEvents,
		s.Summary.MultipleFaceEvents, s.Summary.SuspiciousObjectEvents,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return recorder.ErrSessionNotFound
	}
	return nil
}

// InsertEvent appends an event. Re-inserting an existing event ID is a no-op.
func (db *DB) InsertEvent(ctx context.Context, e *recorder.Event) (err error) {
	defer observe("insert", "events", time.Now(), &err)
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO events (id, session_id, ts, type, message) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.SessionID, e.Timestamp.UTC(), string(e.Type), e.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListEvents returns the events of a session ordered by timestamp.
func (db *DB) ListEvents(ctx context.Context, sessionID string, newestFirst bool) (_ []recorder.Event, err error) {
	defer observe("select", "events", time.Now(), &err)
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	query := `SELECT id, session_id, ts, type, message FROM events WHERE session_id = $1 ORDER BY ts ASC, id ASC`
	if newestFirst {
		query = `SELECT id, session_id, ts, type, message FROM events WHERE session_id = $1 ORDER BY ts DESC, id DESC`
	}
	rows, err := db.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []recorder.Event{}
	for rows.Next() {
		var (
			e   recorder.Event
			typ string
		)
		if err = rows.Scan(&e.ID, &e.SessionID, &e.Timestamp, &typ, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Type = detection.EventType(typ)
		e.Timestamp = e.Timestamp.UTC()
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// observe records query latency. A missing session is not a query error.
func observe(operation, table string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, recorder.ErrSessionNotFound) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
