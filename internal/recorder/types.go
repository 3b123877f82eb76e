// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package recorder persists interview sessions and their event logs and
// computes the end-of-session summary.
package recorder

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
)

// DefaultCandidateName is stored when a session is started without a name.
const DefaultCandidateName = "Unknown Candidate"

var (
	// ErrInvalidSessionID is returned for identifiers that are not 24 hex characters.
	ErrInvalidSessionID = errors.New("invalid session id")
	// ErrSessionNotFound is returned when no session has the given identifier.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidEvent is returned for events with an unknown type or empty message.
	ErrInvalidEvent = errors.New("invalid event")
)

// Summary holds the per-category event counts of a session.
type Summary struct {
	TotalEvents            int `json:"totalEvents"`
	NoFaceEvents           int `json:"noFaceEvents"`
	LookingAwayEvents      int `json:"lookingAwayEvents"`
	MultipleFaceEvents     int `json:"multipleFaceEvents"`
	SuspiciousObjectEvents int `json:"suspiciousObjectEvents"`
}

// Session is one proctored interview.
type Session struct {
	ID            string     `json:"_id"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	Duration      *int64     `json:"duration,omitempty"` // milliseconds
	CandidateName string     `json:"candidateName"`
	Events        []Event    `json:"events"`
	Summary       Summary    `json:"summary"`
}

// Active reports whether the session has not been ended yet.
func (s *Session) Active() bool {
	return s.EndTime == nil
}

// Event is one persisted event log entry.
type Event struct {
	ID        string              `json:"_id"`
	SessionID string              `json:"sessionId"`
	Timestamp time.Time           `json:"timestamp"`
	Type      detection.EventType `json:"type"`
	Message   string              `json:"message"`
}

// Store persists sessions and events.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	// GetSession returns ErrSessionNotFound when the session does not exist.
	// The returned session has no events attached.
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	InsertEvent(ctx context.Context, e *Event) error
	// ListEvents returns the events of a session ordered by timestamp.
	ListEvents(ctx context.Context, sessionID string, newestFirst bool) ([]Event, error)
	Ping(ctx context.Context) error
	Close() error
}
