// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/eventbus"
	"github.com/tomtom215/focusguard/internal/recorder"
)

func newTestManager(t *testing.T, sink EventSink) *Manager {
	t.Helper()
	m := NewManager(config.MonitorConfig{
		FrameInterval: time.Millisecond,
		Retention:     time.Minute,
		MaxSessions:   2,
	}, testDetectorConfig(), sink)
	t.Cleanup(m.shutdown)
	return m
}

func TestManager_Lifecycle(t *testing.T) {
	sink := &recordingSink{}
	m := newTestManager(t, sink)

	st, err := m.Start("s1", "Ada")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st.CandidateName != "Ada" {
		t.Errorf("state = %+v", st)
	}
	if _, err := m.Start("s1", "Ada"); !errors.Is(err, ErrMonitorExists) {
		t.Errorf("second Start = %v, want ErrMonitorExists", err)
	}
	if m.Active() != 1 {
		t.Errorf("Active = %d", m.Active())
	}

	// two faces: multiple-faces alert
	faces := []detection.FaceDetection{{Box: detection.Box{CenterX: 0.3}}, {Box: detection.Box{CenterX: 0.7}}}
	if err := m.Push("s1", Observation{Timestamp: epoch, Faces: faces}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	eventually(t, func() bool { return len(sink.byCategory(detection.CategoryMultipleFaces)) == 1 })

	snap, err := m.Snapshot("s1")
	if err != nil || snap.Detector.FaceCount != 2 {
		t.Errorf("Snapshot = %+v, %v", snap, err)
	}

	final, err := m.Stop("s1")
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if final.Running || final.Detector.Counters.MultipleFaces != 1 {
		t.Errorf("final = %+v", final)
	}
	if err := m.Push("s1", Observation{}); !errors.Is(err, ErrMonitorStopped) {
		t.Errorf("Push after stop = %v, want ErrMonitorStopped", err)
	}
	if again, err := m.Stop("s1"); err != nil || again.Running {
		t.Errorf("second Stop = %+v, %v", again, err)
	}

	// restarting resets counters
	st, err = m.Start("s1", "Ada")
	if err != nil || st.Detector.Counters.Total != 0 {
		t.Errorf("restart = %+v, %v", st, err)
	}
}

func TestManager_UnknownSession(t *testing.T) {
	m := newTestManager(t, nil)
	if err := m.Push("nope", Observation{}); !errors.Is(err, ErrMonitorNotFound) {
		t.Errorf("Push = %v", err)
	}
	if _, err := m.Stop("nope"); !errors.Is(err, ErrMonitorNotFound) {
		t.Errorf("Stop = %v", err)
	}
	if _, err := m.Snapshot("nope"); !errors.Is(err, ErrMonitorNotFound) {
		t.Errorf("Snapshot = %v", err)
	}
}

func TestManager_MaxSessions(t *testing.T) {
	m := newTestManager(t, nil)
	for _, id := range []string{"a", "b"} {
		if _, err := m.Start(id, ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.Start("c", ""); !errors.Is(err, ErrTooManyMonitors) {
		t.Errorf("Start over limit = %v, want ErrTooManyMonitors", err)
	}
	if _, err := m.Stop("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Start("c", ""); err != nil {
		t.Errorf("Start after stop = %v", err)
	}
}

func TestManager_Reap(t *testing.T) {
	m := newTestManager(t, nil)
	now := epoch
	m.now = func() time.Time { return now }

	if _, err := m.Start("s1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Stop("s1"); err != nil {
		t.Fatal(err)
	}
	if n := m.reap(); n != 0 {
		t.Errorf("reaped %d before retention", n)
	}
	var reaped []string
	m.OnReap(func(id string) { reaped = append(reaped, id) })

	now = now.Add(2 * time.Minute)
	if n := m.reap(); n != 1 {
		t.Errorf("reaped %d after retention, want 1", n)
	}
	if _, err := m.Snapshot("s1"); !errors.Is(err, ErrMonitorNotFound) {
		t.Errorf("Snapshot after reap = %v", err)
	}
	if len(reaped) != 1 || reaped[0] != "s1" {
		t.Errorf("reap hooks saw %v, want [s1]", reaped)
	}
}

// Run with -race: pushes overlap the stop that ends the session.
func TestManager_PushDuringStop(t *testing.T) {
	m := newTestManager(t, nil)
	if _, err := m.Start("s1", ""); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				err := m.Push("s1", Observation{Timestamp: epoch, Faces: []detection.FaceDetection{{}}})
				if err != nil && !errors.Is(err, ErrMonitorStopped) {
					t.Errorf("Push = %v", err)
					return
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := m.Stop("s1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	close(stop)
	wg.Wait()

	if err := m.Push("s1", Observation{}); !errors.Is(err, ErrMonitorStopped) {
		t.Errorf("Push after stop = %v, want ErrMonitorStopped", err)
	}
}

func TestManager_ServeStopsMonitors(t *testing.T) {
	m := newTestManager(t, nil)
	if _, err := m.Start("s1", ""); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- m.Serve(ctx) }()
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v", err)
	}
	if m.Active() != 0 {
		t.Errorf("Active = %d after Serve returned", m.Active())
	}
	if _, err := m.Start("s2", ""); err == nil {
		t.Error("Start succeeded after shutdown")
	}
}

type fakeQueue struct {
	mu     sync.Mutex
	events []recorder.Event
}

func (q *fakeQueue) Enqueue(e recorder.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
	return true
}

type fakePublisher struct {
	mu  sync.Mutex
	got []eventbus.AnomalyMessage
}

func (p *fakePublisher) PublishAnomaly(_ context.Context, a eventbus.AnomalyMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, a)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

func TestFanoutSink(t *testing.T) {
	q, pub := &fakeQueue{}, &fakePublisher{}
	s := NewFanoutSink(q, pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx) }()

	e := detection.Event{
		Category:  detection.CategoryLookingAway,
		Type:      detection.TypeWarning,
		Message:   "Looking away for 5.0 seconds",
		Timestamp: epoch,
	}
	s.Emit(Session{ID: "65e1a2b3c4d5e6f708192a3b", CandidateName: "Ada"}, e)

	eventually(t, func() bool { return pub.count() == 1 })
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) != 1 {
		t.Fatalf("queued = %d, want 1", len(q.events))
	}
	re := q.events[0]
	if re.SessionID != "65e1a2b3c4d5e6f708192a3b" || re.Type != detection.TypeWarning || !re.Timestamp.Equal(epoch) {
		t.Errorf("recorder event = %+v", re)
	}
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if pub.got[0].ID != re.ID || pub.got[0].CandidateName != "Ada" {
		t.Errorf("bus message %+v does not match recorder event %s", pub.got[0], re.ID)
	}
}

func TestFanoutSink_FullBufferDrops(t *testing.T) {
	s := NewFanoutSink(nil, &fakePublisher{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		// no Serve: the buffer fills and further emits are dropped
		for i := 0; i < cap(s.pending)+10; i++ {
			s.Emit(Session{ID: "s"}, detection.Event{})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
	if len(s.pending) != cap(s.pending) {
		t.Errorf("pending = %d, want %d", len(s.pending), cap(s.pending))
	}
}
