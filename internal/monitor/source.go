// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/focusguard/internal/detection"
)

// ErrNoFrame is returned by a FrameSource with nothing new to offer, and
// by an ObjectOracle with no result for the frame. Neither is a failure.
var ErrNoFrame = errors.New("no new frame")

// Frame is one captured image, or a reference to one. Data is opaque to the
// driver and interpreted only by the oracles.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Data      any
}

// FrameSource yields the most recent frame.
type FrameSource interface {
	Capture(ctx context.Context) (Frame, error)
}

// FaceOracle locates faces in a frame.
type FaceOracle interface {
	DetectFaces(ctx context.Context, f Frame) ([]detection.FaceDetection, error)
}

// ObjectOracle classifies objects in a frame.
type ObjectOracle interface {
	DetectObjects(ctx context.Context, f Frame) ([]detection.ObjectDetection, error)
}

// Session identifies the interview a driver belongs to.
type Session struct {
	ID            string `json:"session_id"`
	CandidateName string `json:"candidate_name"`
}

// EventSink receives every detector event. Emit must not block.
type EventSink interface {
	Emit(s Session, e detection.Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(s Session, e detection.Event)

func (f SinkFunc) Emit(s Session, e detection.Event) { f(s, e) }
