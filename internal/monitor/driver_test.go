// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// steppingSource yields a new frame per capture, 100ms apart.
type steppingSource struct {
	seq atomic.Uint64
}

func (s *steppingSource) Capture(context.Context) (Frame, error) {
	n := s.seq.Add(1)
	return Frame{Seq: n, Timestamp: epoch.Add(time.Duration(n) * 100 * time.Millisecond)}, nil
}

type faceFunc func(ctx context.Context, f Frame) ([]detection.FaceDetection, error)

func (fn faceFunc) DetectFaces(ctx context.Context, f Frame) ([]detection.FaceDetection, error) {
	return fn(ctx, f)
}

// blockingObjects counts calls and blocks each until released.
type blockingObjects struct {
	calls   atomic.Int32
	release chan struct{}
	result  []detection.ObjectDetection
}

func (o *blockingObjects) DetectObjects(ctx context.Context, _ Frame) ([]detection.ObjectDetection, error) {
	o.calls.Add(1)
	select {
	case <-o.release:
		return o.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []detection.Event
}

func (s *recordingSink) Emit(_ Session, e detection.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) byCategory(c detection.Category) []detection.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []detection.Event
	for _, e := range s.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

func testDetectorConfig() detection.Config {
	cfg := detection.DefaultConfig()
	cfg.NoFaceThreshold = time.Second
	cfg.NoFaceRepeatInterval = time.Second
	cfg.ObjectScanInterval = 300 * time.Millisecond
	return cfg
}

func noFaces(context.Context, Frame) ([]detection.FaceDetection, error) { return nil, nil }

func centeredFace(context.Context, Frame) ([]detection.FaceDetection, error) {
	return []detection.FaceDetection{{Box: detection.Box{CenterX: 0.5, CenterY: 0.5, Width: 0.3, Height: 0.4}}}, nil
}

func runDriver(t *testing.T, d *Driver) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return func() {
		cancel()
		<-done
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDriver_NoFaceAlert(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(Session{ID: "s1"}, detection.NewDetector(testDetectorConfig()),
		&steppingSource{}, faceFunc(noFaces), nil, sink, WithInterval(time.Millisecond))
	runDriver(t, d)

	eventually(t, func() bool { return len(sink.byCategory(detection.CategoryNoFace)) >= 1 })
	e := sink.byCategory(detection.CategoryNoFace)[0]
	if e.Type != detection.TypeAlert {
		t.Errorf("type = %s, want alert", e.Type)
	}
	if e.Elapsed < time.Second {
		t.Errorf("elapsed = %v, want >= 1s", e.Elapsed)
	}

	st := d.State()
	if !st.Running || st.Frames == 0 || st.Detector.Counters.NoFace == 0 {
		t.Errorf("state = %+v", st)
	}
	if !st.Degraded {
		t.Error("driver without object oracle should report degraded")
	}
}

func TestDriver_OverlappingObjectScanDropped(t *testing.T) {
	sink := &recordingSink{}
	objects := &blockingObjects{
		release: make(chan struct{}),
		result:  []detection.ObjectDetection{{Label: "cell phone", Score: 0.9}},
	}
	d := NewDriver(Session{ID: "s1"}, detection.NewDetector(testDetectorConfig()),
		&steppingSource{}, faceFunc(centeredFace), objects, sink, WithInterval(time.Millisecond))
	runDriver(t, d)

	// frames advance 100ms per tick; with the first scan stuck, later due
	// ticks are dropped rather than queued
	eventually(t, func() bool { return d.State().DroppedScans > 0 })
	if n := objects.calls.Load(); n != 1 {
		t.Fatalf("object oracle calls = %d while first scan in flight, want 1", n)
	}
	if !d.State().ScanInFlight {
		t.Error("ScanInFlight = false")
	}

	close(objects.release)
	eventually(t, func() bool { return len(sink.byCategory(detection.CategorySuspiciousObject)) >= 1 })
	e := sink.byCategory(detection.CategorySuspiciousObject)[0]
	if e.Label != "cell phone" {
		t.Errorf("label = %q", e.Label)
	}
}

func TestDriver_OracleErrorsDoNotStopLoop(t *testing.T) {
	sink := &recordingSink{}
	failing := faceFunc(func(context.Context, Frame) ([]detection.FaceDetection, error) {
		return nil, errors.New("model crashed")
	})
	d := NewDriver(Session{ID: "s1"}, detection.NewDetector(testDetectorConfig()),
		&steppingSource{}, failing, nil, sink, WithInterval(time.Millisecond))
	runDriver(t, d)

	eventually(t, func() bool { return d.State().Frames >= 20 })
	if n := len(sink.byCategory(detection.CategoryNoFace)); n != 0 {
		t.Errorf("no-face alerts = %d from failed face oracle, want 0", n)
	}
}

func TestDriver_NoFrameSkipsTick(t *testing.T) {
	feed := NewPushFeed()
	d := NewDriver(Session{ID: "s1"}, detection.NewDetector(testDetectorConfig()),
		feed, feed, feed, nil, WithInterval(time.Millisecond))
	runDriver(t, d)

	time.Sleep(20 * time.Millisecond)
	if f := d.State().Frames; f != 0 {
		t.Errorf("Frames = %d with an empty feed, want 0", f)
	}
	feed.Push(Observation{Timestamp: epoch})
	eventually(t, func() bool { return d.State().Frames == 1 })
}

func TestDriver_StateAfterStop(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(Session{ID: "s1", CandidateName: "Ada"}, detection.NewDetector(testDetectorConfig()),
		&steppingSource{}, faceFunc(noFaces), nil, sink, WithInterval(time.Millisecond))
	stop := runDriver(t, d)

	eventually(t, func() bool { return d.State().Frames >= 5 })
	stop()

	st := d.State()
	if st.Running || st.StoppedAt == nil {
		t.Errorf("state after stop = %+v", st)
	}
	if st.Detector.NoFaceSince == nil {
		t.Error("no-face timer lost on stop")
	}
	frames := st.Frames
	time.Sleep(10 * time.Millisecond)
	if d.State().Frames != frames {
		t.Error("frames processed after stop")
	}
}
