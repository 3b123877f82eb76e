// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
)

var (
	ErrMonitorExists   = errors.New("monitor already running for session")
	ErrMonitorNotFound = errors.New("no monitor for session")
	ErrMonitorStopped  = errors.New("monitor stopped")
	ErrTooManyMonitors = errors.New("too many active monitors")
)

type entry struct {
	driver    *Driver
	feed      *PushFeed
	cancel    context.CancelFunc
	done      chan struct{}
	stoppedAt time.Time
}

func (e *entry) running() bool { return e.stoppedAt.IsZero() }

// Manager runs one monitor per interview session.
type Manager struct {
	cfg    config.MonitorConfig
	detCfg detection.Config
	sink   EventSink
	now    func() time.Time

	root   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	monitors map[string]*entry
	onReap   []func(sessionID string)
}

// NewManager creates a manager. Monitors run until stopped or until Serve
// returns.
func NewManager(cfg config.MonitorConfig, detCfg detection.Config, sink EventSink) *Manager {
	root, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		detCfg:   detCfg,
		sink:     sink,
		now:      time.Now,
		root:     root,
		cancel:   cancel,
		monitors: make(map[string]*entry),
	}
}

// Start launches a monitor with a fresh detector. A stopped monitor for the
// same session is replaced.
func (m *Manager) Start(sessionID, candidateName string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.root.Err() != nil {
		return State{}, fmt.Errorf("start monitor: %w", m.root.Err())
	}
	if e, ok := m.monitors[sessionID]; ok && e.running() {
		return e.driver.State(), ErrMonitorExists
	}
	if m.cfg.MaxSessions > 0 && m.activeLocked() >= m.cfg.MaxSessions {
		return State{}, ErrTooManyMonitors
	}

	feed := NewPushFeed()
	feed.now = m.now
	d := NewDriver(
		Session{ID: sessionID, CandidateName: candidateName},
		detection.NewDetector(m.detCfg),
		feed, feed, feed,
		m.sink,
		WithInterval(m.cfg.FrameInterval),
		WithDriverClock(m.now),
	)
	ctx, cancel := context.WithCancel(m.root)
	e := &entry{driver: d, feed: feed, cancel: cancel, done: make(chan struct{})}
	m.monitors[sessionID] = e

	go func() {
		defer close(e.done)
		_ = d.Run(ctx)
	}()

	metrics.ActiveMonitors.Set(float64(m.activeLocked()))
	logging.Info().Str("session_id", sessionID).Str("candidate", candidateName).Msg("Session monitor started")
	return d.State(), nil
}

// Stop halts the session's monitor and returns its final state. The
// monitor stays inspectable until reaped.
func (m *Manager) Stop(sessionID string) (State, error) {
	m.mu.Lock()
	e, ok := m.monitors[sessionID]
	if !ok {
		m.mu.Unlock()
		return State{}, ErrMonitorNotFound
	}
	if !e.running() {
		m.mu.Unlock()
		return e.driver.State(), nil
	}
	e.stoppedAt = m.now()
	m.mu.Unlock()

	e.cancel()
	<-e.done

	m.mu.Lock()
	metrics.ActiveMonitors.Set(float64(m.activeLocked()))
	m.mu.Unlock()

	st := e.driver.State()
	logging.Info().Str("session_id", sessionID).Int("anomalies", st.Detector.Counters.Total).Msg("Session monitor stopped")
	return st, nil
}

// Push hands an observation to the session's monitor.
func (m *Manager) Push(sessionID string, o Observation) error {
	m.mu.Lock()
	e, ok := m.monitors[sessionID]
	if !ok {
		m.mu.Unlock()
		return ErrMonitorNotFound
	}
	if !e.running() {
		m.mu.Unlock()
		return ErrMonitorStopped
	}
	feed := e.feed
	m.mu.Unlock()

	feed.Push(o)
	return nil
}

// Snapshot returns the session monitor's latest state.
func (m *Manager) Snapshot(sessionID string) (State, error) {
	m.mu.Lock()
	e, ok := m.monitors[sessionID]
	m.mu.Unlock()
	if !ok {
		return State{}, ErrMonitorNotFound
	}
	return e.driver.State(), nil
}

// Active returns the number of running monitors.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked()
}

func (m *Manager) activeLocked() int {
	n := 0
	for _, e := range m.monitors {
		if e.running() {
			n++
		}
	}
	return n
}

// OnReap registers fn to be called with the session ID of every monitor the
// manager forgets. Hooks run outside the manager lock.
func (m *Manager) OnReap(fn func(sessionID string)) {
	m.mu.Lock()
	m.onReap = append(m.onReap, fn)
	m.mu.Unlock()
}

// reap forgets monitors stopped longer than the retention period.
func (m *Manager) reap() int {
	m.mu.Lock()
	now := m.now()
	var reaped []string
	for id, e := range m.monitors {
		if !e.running() && now.Sub(e.stoppedAt) > m.cfg.Retention {
			delete(m.monitors, id)
			reaped = append(reaped, id)
		}
	}
	hooks := m.onReap
	m.mu.Unlock()

	for _, id := range reaped {
		for _, fn := range hooks {
			fn(id)
		}
	}
	return len(reaped)
}

// Serve reaps stopped monitors until ctx is canceled, then stops every
// monitor.
func (m *Manager) Serve(ctx context.Context) error {
	interval := m.cfg.Retention / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()
		case <-ticker.C:
			if n := m.reap(); n > 0 {
				logging.Debug().Int("reaped", n).Msg("Reaped stopped session monitors")
			}
		}
	}
}

func (m *Manager) shutdown() {
	m.cancel()
	m.mu.Lock()
	var waits []chan struct{}
	now := m.now()
	for _, e := range m.monitors {
		if e.running() {
			e.stoppedAt = now
			waits = append(waits, e.done)
		}
	}
	m.mu.Unlock()
	for _, done := range waits {
		<-done
	}
	metrics.ActiveMonitors.Set(0)
	logging.Info().Int("stopped", len(waits)).Msg("Session monitors stopped")
}

func (m *Manager) String() string { return "monitor-manager" }
