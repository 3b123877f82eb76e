// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
)

// State is an immutable view of a driver, republished after every frame.
type State struct {
	Session
	Running      bool               `json:"running"`
	Degraded     bool               `json:"degraded"`
	StartedAt    time.Time          `json:"started_at"`
	StoppedAt    *time.Time         `json:"stopped_at,omitempty"`
	Frames       uint64             `json:"frames"`
	ScanInFlight bool               `json:"scan_in_flight"`
	DroppedScans uint64             `json:"dropped_scans"`
	Detector     detection.Snapshot `json:"detector"`
}

type objectResult struct {
	objects []detection.ObjectDetection
	err     error
}

// DriverOption customizes a Driver.
type DriverOption func(*Driver)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) DriverOption {
	return func(dr *Driver) {
		if d > 0 {
			dr.interval = d
		}
	}
}

// WithDriverClock replaces time.Now for frames without a timestamp.
func WithDriverClock(now func() time.Time) DriverOption {
	return func(dr *Driver) { dr.now = now }
}

// Driver runs one detector against a frame source. Run it once.
type Driver struct {
	session  Session
	det      *detection.Detector
	source   FrameSource
	faces    FaceOracle
	objects  ObjectOracle
	sink     EventSink
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger

	// owned by the Run goroutine
	results      chan objectResult
	scanInFlight bool
	lastFrame    time.Time
	frames       uint64
	droppedScans uint64
	clamped      uint64
	startedAt    time.Time

	state atomic.Pointer[State]
}

// NewDriver wires a detector to its inputs. faces and objects may be nil.
func NewDriver(s Session, det *detection.Detector, source FrameSource, faces FaceOracle, objects ObjectOracle, sink EventSink, opts ...DriverOption) *Driver {
	d := &Driver{
		session:  s,
		det:      det,
		source:   source,
		faces:    faces,
		objects:  objects,
		sink:     sink,
		interval: 100 * time.Millisecond,
		now:      time.Now,
		results:  make(chan objectResult, 1),
		log:      logging.With().Str("component", "monitor").Str("session_id", s.ID).Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.publish(false, nil)
	return d
}

// State returns the latest published state.
func (d *Driver) State() State {
	return *d.state.Load()
}

// Run processes frames until ctx is canceled. The detector state is left
// as of the last processed frame and stays readable through State.
func (d *Driver) Run(ctx context.Context) error {
	d.startedAt = d.now()
	if d.faces == nil || d.objects == nil {
		d.log.Warn().Bool("face_oracle", d.faces != nil).Bool("object_oracle", d.objects != nil).
			Msg("Monitor running in degraded mode")
	}
	d.publish(true, nil)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopped := d.now()
			d.publish(false, &stopped)
			return ctx.Err()
		case <-ticker.C:
			d.tick(ctx)
		case r := <-d.results:
			d.handleObjects(r)
		}
	}
}

func (d *Driver) tick(ctx context.Context) {
	start := time.Now()

	frame, err := d.source.Capture(ctx)
	if errors.Is(err, ErrNoFrame) {
		return
	}
	if err != nil {
		metrics.OracleErrors.WithLabelValues("source").Inc()
		d.log.Warn().Err(err).Msg("Frame capture failed")
		return
	}
	now := frame.Timestamp
	if now.IsZero() {
		now = d.now()
	}

	var events []detection.Event
	if d.faces != nil {
		faces, err := d.faces.DetectFaces(ctx, frame)
		if err != nil {
			metrics.OracleErrors.WithLabelValues("face").Inc()
			d.log.Warn().Err(err).Uint64("seq", frame.Seq).Msg("Face detection failed")
		} else {
			events = d.det.ProcessFaces(faces, now)
		}
	}
	d.lastFrame = now
	d.frames++

	if d.objects != nil && d.det.ObjectScanDue(now) {
		if d.scanInFlight {
			d.droppedScans++
			metrics.ObjectScans.WithLabelValues("dropped").Inc()
		} else if d.det.BeginObjectScan(now) {
			d.scanInFlight = true
			go d.scan(ctx, frame)
		}
	}

	d.emit(events)
	metrics.RecordFrame(time.Since(start))
	d.publish(true, nil)
}

func (d *Driver) scan(ctx context.Context, f Frame) {
	objects, err := d.objects.DetectObjects(ctx, f)
	// buffered; at most one scan is in flight
	d.results <- objectResult{objects: objects, err: err}
}

// handleObjects evaluates a finished scan at the time of the latest frame.
func (d *Driver) handleObjects(r objectResult) {
	d.scanInFlight = false
	switch {
	case errors.Is(r.err, ErrNoFrame), errors.Is(r.err, context.Canceled):
		return
	case r.err != nil:
		metrics.ObjectScans.WithLabelValues("failed").Inc()
		metrics.OracleErrors.WithLabelValues("object").Inc()
		d.log.Warn().Err(r.err).Msg("Object detection failed")
		return
	}
	metrics.ObjectScans.WithLabelValues("completed").Inc()

	at := d.lastFrame
	if at.IsZero() {
		at = d.now()
	}
	d.emit(d.det.ProcessObjects(r.objects, at))
	d.publish(true, nil)
}

func (d *Driver) emit(events []detection.Event) {
	for _, e := range events {
		metrics.RecordAnomaly(string(e.Category), string(e.Type))
		d.log.Debug().Str("category", string(e.Category)).Str("type", string(e.Type)).Msg(e.Message)
		if d.sink != nil {
			d.sink.Emit(d.session, e)
		}
	}
}

func (d *Driver) publish(running bool, stoppedAt *time.Time) {
	snap := d.det.Snapshot()
	if snap.ClampedFrames > d.clamped {
		metrics.ClampedTimestamps.Add(float64(snap.ClampedFrames - d.clamped))
		d.clamped = snap.ClampedFrames
	}
	d.state.Store(&State{
		Session:      d.session,
		Running:      running,
		Degraded:     d.faces == nil || d.objects == nil,
		StartedAt:    d.startedAt,
		StoppedAt:    stoppedAt,
		Frames:       d.frames,
		ScanInFlight: d.scanInFlight,
		DroppedScans: d.droppedScans,
		Detector:     snap,
	})
}
