// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package eventqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/wal"
)

// flakyDeliverer fails the first failures calls, then records events.
type flakyDeliverer struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	got      []recorder.Event
	block    chan struct{}
}

func (d *flakyDeliverer) RecordEvent(ctx context.Context, e recorder.Event) (*recorder.Event, error) {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.failures > 0 {
		d.failures--
		if d.err != nil {
			return nil, d.err
		}
		return nil, errors.New("recorder unavailable")
	}
	d.got = append(d.got, e)
	return &e, nil
}

func (d *flakyDeliverer) snapshot() (int, []recorder.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls, append([]recorder.Event(nil), d.got...)
}

func testConfig() Config {
	return Config{
		BufferSize:       8,
		Workers:          1,
		MaxAttempts:      3,
		BaseBackoff:      time.Millisecond,
		MaxBackoff:       4 * time.Millisecond,
		DeliveryTimeout:  time.Second,
		BreakerThreshold: 100,
		BreakerTimeout:   time.Second,
		EntryTTL:         time.Hour,
	}
}

func testEvent(msg string) recorder.Event {
	return recorder.Event{
		SessionID: recorder.NewID(),
		Type:      detection.TypeAlert,
		Message:   msg,
	}
}

func startQueue(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func flush(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestQueue_DeliversEvents(t *testing.T) {
	d := &flakyDeliverer{}
	q := New(testConfig(), d, nil)
	startQueue(t, q)

	for i := 0; i < 5; i++ {
		if !q.Enqueue(testEvent("No face detected!")) {
			t.Fatalf("Enqueue %d rejected", i)
		}
	}
	flush(t, q)

	_, got := d.snapshot()
	if len(got) != 5 {
		t.Fatalf("delivered %d events, want 5", len(got))
	}
	for _, e := range got {
		if e.ID == "" {
			t.Error("event delivered without a pre-assigned ID")
		}
	}
	s := q.Stats()
	if s.Delivered != 5 || s.Enqueued != 5 || s.Dropped != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestQueue_RetriesTransientFailures(t *testing.T) {
	d := &flakyDeliverer{failures: 2}
	q := New(testConfig(), d, nil)
	startQueue(t, q)

	e := testEvent("Multiple faces detected!")
	q.Enqueue(e)
	flush(t, q)

	calls, got := d.snapshot()
	if calls != 3 || len(got) != 1 {
		t.Fatalf("calls = %d, delivered = %d; want 3 and 1", calls, len(got))
	}
	if q.Stats().Retries != 2 {
		t.Errorf("Retries = %d, want 2", q.Stats().Retries)
	}
}

func TestQueue_DropsAfterMaxAttempts(t *testing.T) {
	d := &flakyDeliverer{failures: 10}
	q := New(testConfig(), d, nil)
	startQueue(t, q)

	q.Enqueue(testEvent("Candidate looking away from screen!"))
	flush(t, q)

	calls, got := d.snapshot()
	if calls != 3 {
		t.Errorf("calls = %d, want MaxAttempts (3)", calls)
	}
	if len(got) != 0 {
		t.Errorf("delivered = %d, want 0", len(got))
	}
	if q.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", q.Stats().Dropped)
	}
}

func TestQueue_PermanentErrorNotRetried(t *testing.T) {
	d := &flakyDeliverer{failures: 1, err: recorder.ErrSessionNotFound}
	q := New(testConfig(), d, nil)
	startQueue(t, q)

	q.Enqueue(testEvent("Suspicious object detected: cell phone"))
	flush(t, q)

	if calls, _ := d.snapshot(); calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if q.Stats().Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", q.Stats().Dropped)
	}
}

func TestQueue_EnqueueNeverBlocks(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 2
	// no Serve: nothing drains the buffer
	q := New(cfg, &flakyDeliverer{}, nil)

	accepted := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			if q.Enqueue(testEvent("No face detected!")) {
				accepted++
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full buffer")
	}
	if accepted != 2 {
		t.Errorf("accepted = %d, want 2", accepted)
	}
	if q.Stats().Dropped != 8 {
		t.Errorf("Dropped = %d, want 8", q.Stats().Dropped)
	}
}

func TestQueue_FlushRespectsContext(t *testing.T) {
	d := &flakyDeliverer{block: make(chan struct{})}
	q := New(testConfig(), d, nil)
	startQueue(t, q)
	defer close(d.block)

	q.Enqueue(testEvent("No face detected!"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush = %v, want deadline exceeded", err)
	}
}

func TestQueue_FlushEmpty(t *testing.T) {
	q := New(testConfig(), &flakyDeliverer{}, nil)
	flush(t, q)
}

func TestQueue_EnqueueAfterShutdown(t *testing.T) {
	q := New(testConfig(), &flakyDeliverer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Serve = %v", err)
	}
	if q.Enqueue(testEvent("No face detected!")) {
		t.Error("Enqueue accepted after shutdown")
	}
	if !q.Stats().Closed {
		t.Error("Stats().Closed = false")
	}
	if err := q.Serve(context.Background()); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("second Serve = %v, want ErrQueueClosed", err)
	}
}

func openWAL(t *testing.T) *wal.BadgerWAL {
	t.Helper()
	w, err := wal.Open(wal.Config{InMemory: true, EntryTTL: time.Hour})
	if err != nil {
		t.Fatalf("wal.Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestQueue_WALConfirmedOnDelivery(t *testing.T) {
	w := openWAL(t)
	d := &flakyDeliverer{failures: 1}
	q := New(testConfig(), d, w)
	startQueue(t, q)

	q.Enqueue(testEvent("No face detected!"))
	flush(t, q)

	if n := w.PendingCount(); n != 0 {
		t.Errorf("PendingCount = %d after delivery, want 0", n)
	}
}

func TestQueue_ReplaysPendingWAL(t *testing.T) {
	w := openWAL(t)
	ctx := context.Background()

	e := testEvent("Multiple faces detected!")
	e.ID = recorder.NewID()
	if _, err := w.Write(ctx, Item{Event: e}); err != nil {
		t.Fatal(err)
	}

	d := &flakyDeliverer{}
	q := New(testConfig(), d, w)
	startQueue(t, q)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, got := d.snapshot(); len(got) == 1 {
			if got[0].ID != e.ID {
				t.Errorf("replayed ID = %q, want %q", got[0].ID, e.ID)
			}
			flush(t, q)
			if n := w.PendingCount(); n != 0 {
				t.Errorf("PendingCount = %d after replay, want 0", n)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("pending WAL entry was not replayed")
}

func TestQueue_ShutdownPersistsBuffered(t *testing.T) {
	w := openWAL(t)
	q := New(testConfig(), &flakyDeliverer{}, w)

	// buffer without workers, then shut down
	q.Enqueue(testEvent("No face detected!"))
	q.Enqueue(testEvent("No face detected!"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = q.Serve(ctx)

	if n := w.PendingCount(); n != 2 {
		t.Errorf("PendingCount = %d, want 2", n)
	}
	flush(t, q)
}

func TestBackoff(t *testing.T) {
	q := New(Config{BaseBackoff: 100 * time.Millisecond, MaxBackoff: time.Second}, &flakyDeliverer{}, nil)
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := q.backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
