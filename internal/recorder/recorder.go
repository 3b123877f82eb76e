// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package recorder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/logging"
)

// Recorder implements the session lifecycle on top of a Store.
type Recorder struct {
	store Store
	now   func() time.Time
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// New creates a Recorder backed by store.
func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying store.
func (r *Recorder) Store() Store {
	return r.store
}

// StartSession creates a session and logs the session-start notice.
func (r *Recorder) StartSession(ctx context.Context, candidateName string) (*Session, error) {
	name := strings.TrimSpace(candidateName)
	if name == "" {
		name = DefaultCandidateName
	}
	s := &Session{
		ID:            NewID(),
		StartTime:     r.now().UTC(),
		CandidateName: name,
		Events:        []Event{},
	}
	if err := r.store.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	notice := Event{
		ID:        NewID(),
		SessionID: s.ID,
		Timestamp: s.StartTime,
		Type:      detection.TypeSuccess,
		Message:   "Interview session started for " + name,
	}
	if err := r.store.InsertEvent(ctx, &notice); err != nil {
		// the session exists; a missing notice only affects the event log
		logging.Ctx(ctx).Warn().Err(err).Str("session_id", s.ID).Msg("Failed to log session start")
	}

	logging.Ctx(ctx).Info().Str("session_id", s.ID).Str("candidate", name).Msg("Session started")
	return s, nil
}

// EndSession stamps the end time, computes the summary from the persisted
// events and saves the session. Ending an already ended session recomputes
// both.
func (r *Recorder) EndSession(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidSessionID
	}
	s, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	end := r.now().UTC()
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	duration := end.Sub(s.StartTime).Milliseconds()
	s.EndTime = &end
	s.Duration = &duration

	events, err := r.store.ListEvents(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	s.Summary = Summarize(events)
	if err := r.store.UpdateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	s.Events = events

	logging.Ctx(ctx).Info().
		Str("session_id", id).
		Int64("duration_ms", duration).
		Int("total_events", s.Summary.TotalEvents).
		Msg("Session ended")
	return s, nil
}

// SessionDetails returns the session with its events, oldest first.
func (r *Recorder) SessionDetails(ctx context.Context, id string) (*Session, error) {
	if !ValidID(id) {
		return nil, ErrInvalidSessionID
	}
	s, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	events, err := r.store.ListEvents(ctx, id, false)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	s.Events = events
	return s, nil
}

// LogEvent appends an event stamped with the current time.
func (r *Recorder) LogEvent(ctx context.Context, sessionID string, eventType detection.EventType, message string) (*Event, error) {
	return r.RecordEvent(ctx, Event{
		SessionID: sessionID,
		Type:      eventType,
		Message:   message,
	})
}

// RecordEvent appends e. A zero timestamp is replaced with the current time
// and an empty ID is generated. Inserting an event whose ID already exists
// is a no-op, so callers may retry.
func (r *Recorder) RecordEvent(ctx context.Context, e Event) (*Event, error) {
	if !ValidID(e.SessionID) {
		return nil, ErrInvalidSessionID
	}
	if !e.Type.Valid() || strings.TrimSpace(e.Message) == "" {
		return nil, fmt.Errorf("%w: type %q, message %q", ErrInvalidEvent, e.Type, e.Message)
	}
	if _, err := r.store.GetSession(ctx, e.SessionID); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now()
	}
	e.Timestamp = e.Timestamp.UTC()
	if err := r.store.InsertEvent(ctx, &e); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &e, nil
}

// SessionEvents returns the events of a session, newest first.
func (r *Recorder) SessionEvents(ctx context.Context, sessionID string) ([]Event, error) {
	if !ValidID(sessionID) {
		return nil, ErrInvalidSessionID
	}
	return r.store.ListEvents(ctx, sessionID, true)
}

// Report is the human-facing view of a session.
type Report struct {
	SessionID       string                      `json:"sessionId"`
	CandidateName   string                      `json:"candidateName"`
	StartTime       time.Time                   `json:"startTime"`
	EndTime         *time.Time                  `json:"endTime,omitempty"`
	Active          bool                        `json:"active"`
	DurationMinutes float64                     `json:"durationMinutes"`
	Summary         Summary                     `json:"summary"`
	ByType          map[detection.EventType]int `json:"byType"`
}

// Report builds the report for a session. Active sessions are summarized
// live up to the current time.
func (r *Recorder) Report(ctx context.Context, id string) (*Report, error) {
	s, err := r.SessionDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	end := r.now().UTC()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	rep := &Report{
		SessionID:       s.ID,
		CandidateName:   s.CandidateName,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		Active:          s.Active(),
		DurationMinutes: end.Sub(s.StartTime).Minutes(),
		Summary:         s.Summary,
		ByType:          make(map[detection.EventType]int),
	}
	if s.Active() {
		rep.Summary = Summarize(s.Events)
	}
	for _, e := range s.Events {
		rep.ByType[e.Type]++
	}
	return rep, nil
}
