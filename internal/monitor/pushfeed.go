// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
)

// Observation is one frame's worth of client-side model output. Objects is
// nil when the object model did not run for this frame; a non-nil empty
// slice means it ran and saw nothing.
type Observation struct {
	Timestamp time.Time                    `json:"timestamp"`
	Faces     []detection.FaceDetection    `json:"faces"`
	Objects   *[]detection.ObjectDetection `json:"objects,omitempty"`
}

// PushFeed is a FrameSource, FaceOracle and ObjectOracle fed by Push.
// Capture returns only the latest observation; object results are held
// until one scan consumes them.
type PushFeed struct {
	mu        sync.Mutex
	seq       uint64
	delivered uint64
	latest    Observation
	objects   *[]detection.ObjectDetection
	now       func() time.Time
}

func NewPushFeed() *PushFeed {
	return &PushFeed{now: time.Now}
}

// Push records o as the latest observation. A zero timestamp is stamped
// with the current time.
func (f *PushFeed) Push(o Observation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o.Timestamp.IsZero() {
		o.Timestamp = f.now()
	}
	f.seq++
	f.latest = o
	if o.Objects != nil {
		objs := append([]detection.ObjectDetection(nil), (*o.Objects)...)
		f.objects = &objs
	}
}

// Capture returns the latest observation, or ErrNoFrame if it was already
// returned.
func (f *PushFeed) Capture(context.Context) (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seq == f.delivered {
		return Frame{}, ErrNoFrame
	}
	f.delivered = f.seq
	o := f.latest
	return Frame{Seq: f.seq, Timestamp: o.Timestamp, Data: o}, nil
}

// DetectFaces returns the faces carried by the frame.
func (f *PushFeed) DetectFaces(_ context.Context, fr Frame) ([]detection.FaceDetection, error) {
	o, ok := fr.Data.(Observation)
	if !ok {
		return nil, fmt.Errorf("push feed: unexpected frame payload %T", fr.Data)
	}
	return o.Faces, nil
}

// DetectObjects consumes the pending object result, or returns ErrNoFrame
// if none was pushed since the last scan.
func (f *PushFeed) DetectObjects(context.Context, Frame) ([]detection.ObjectDetection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		return nil, ErrNoFrame
	}
	objs := *f.objects
	f.objects = nil
	if objs == nil {
		objs = []detection.ObjectDetection{}
	}
	return objs, nil
}
