// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package recorder

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	events   map[string][]Event
	eventIDs map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		events:   make(map[string][]Event),
		eventIDs: make(map[string]struct{}),
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	cp.Events = nil
	m.sessions[s.ID] = cp
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.Events = []Event{}
	return &s, nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrSessionNotFound
	}
	cp := *s
	cp.Events = nil
	m.sessions[s.ID] = cp
	return nil
}

func (m *MemoryStore) InsertEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.eventIDs[e.ID]; dup {
		return nil
	}
	m.eventIDs[e.ID] = struct{}{}
	m.events[e.SessionID] = append(m.events[e.SessionID], *e)
	return nil
}

func (m *MemoryStore) ListEvents(_ context.Context, sessionID string, newestFirst bool) ([]Event, error) {
	m.mu.RLock()
	out := append([]Event{}, m.events[sessionID]...)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
