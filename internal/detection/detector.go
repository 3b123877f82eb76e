// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import (
	"fmt"
	"time"
)

const (
	msgNoFace        = "No face detected for %.1f seconds"
	msgLookingAway   = "Looking away for %.1f seconds"
	msgMultipleFaces = "Multiple faces detected: %d people in frame"
	msgSuspicious    = "Suspicious object detected: %s (%.1f%% confidence)"
	msgFaceRecovered = "Face detected again"
	msgGazeRecovered = "Looking at camera again"
)

// Detector converts per-frame detections into debounced events for one
// session. It is not safe for concurrent use.
type Detector struct {
	cfg    Config
	filter ObjectFilter

	// zero value means "no streak in progress"
	noFaceSince      time.Time
	lookingAwaySince time.Time

	lastNoFaceAlert   time.Time
	lastLookingAway   time.Time
	lastMultipleFaces time.Time
	lastObjectScan    time.Time

	sightings map[string]time.Time

	lastNow           time.Time
	faceCount         int
	suspiciousVisible int
	clamped           uint64
	counters          Counters
}

// NewDetector creates a Detector with fresh state.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:       cfg,
		filter:    Filters(cfg),
		sightings: make(map[string]time.Time),
	}
}

// Config returns the thresholds the detector was built with.
func (d *Detector) Config() Config {
	return d.cfg
}

// ProcessFrame evaluates one frame. Objects are only evaluated when objects
// is non-nil and an object scan is due; pass nil for frames on which the
// object oracle did not run.
func (d *Detector) ProcessFrame(faces []FaceDetection, objects []ObjectDetection, now time.Time) []Event {
	events := d.ProcessFaces(faces, now)
	if objects != nil && d.BeginObjectScan(now) {
		events = append(events, d.ProcessObjects(objects, now)...)
	}
	return events
}

// ProcessFaces runs the face-count branch for one frame.
func (d *Detector) ProcessFaces(faces []FaceDetection, now time.Time) []Event {
	now = d.observe(now)
	d.faceCount = len(faces)

	switch len(faces) {
	case 0:
		return d.handleNoFace(now)
	case 1:
		return d.handleSingleFace(faces[0], now)
	default:
		return d.handleMultipleFaces(len(faces), now)
	}
}

func (d *Detector) handleNoFace(now time.Time) []Event {
	var events []Event
	if d.noFaceSince.IsZero() {
		d.noFaceSince = now
	}
	elapsed := now.Sub(d.noFaceSince)
	if elapsed >= d.cfg.NoFaceThreshold && rateLimitPassed(d.lastNoFaceAlert, now, d.cfg.noFaceRepeat()) {
		events = append(events, d.emit(Event{
			Category:  CategoryNoFace,
			Type:      TypeAlert,
			Message:   fmt.Sprintf(msgNoFace, elapsed.Seconds()),
			Timestamp: now,
			Elapsed:   elapsed,
		}))
		d.lastNoFaceAlert = now
	}
	d.lookingAwaySince = time.Time{}
	return events
}

func (d *Detector) handleSingleFace(face FaceDetection, now time.Time) []Event {
	var events []Event
	if !d.noFaceSince.IsZero() {
		events = append(events, d.emit(Event{
			Category:  CategoryFaceRecovered,
			Type:      TypeSuccess,
			Message:   msgFaceRecovered,
			Timestamp: now,
			FaceCount: 1,
		}))
		d.noFaceSince = time.Time{}
	}

	if !IsLookingAway(face, d.cfg.GazeMargin) {
		if !d.lookingAwaySince.IsZero() {
			events = append(events, d.emit(Event{
				Category:  CategoryGazeRecovered,
				Type:      TypeSuccess,
				Message:   msgGazeRecovered,
				Timestamp: now,
				FaceCount: 1,
			}))
			d.lookingAwaySince = time.Time{}
		}
		return events
	}

	if d.lookingAwaySince.IsZero() {
		d.lookingAwaySince = now
	}
	elapsed := now.Sub(d.lookingAwaySince)
	if elapsed >= d.cfg.LookingAwayThreshold && rateLimitPassed(d.lastLookingAway, now, d.cfg.lookingAwayRepeat()) {
		events = append(events, d.emit(Event{
			Category:  CategoryLookingAway,
			Type:      TypeWarning,
			Message:   fmt.Sprintf(msgLookingAway, elapsed.Seconds()),
			Timestamp: now,
			Elapsed:   elapsed,
			FaceCount: 1,
		}))
		d.lastLookingAway = now
	}
	return events
}

func (d *Detector) handleMultipleFaces(count int, now time.Time) []Event {
	var events []Event
	if rateLimitPassed(d.lastMultipleFaces, now, d.cfg.MultipleFacesInterval) {
		events = append(events, d.emit(Event{
			Category:  CategoryMultipleFaces,
			Type:      TypeAlert,
			Message:   fmt.Sprintf(msgMultipleFaces, count),
			Timestamp: now,
			FaceCount: count,
		}))
		d.lastMultipleFaces = now
	}
	d.noFaceSince = time.Time{}
	d.lookingAwaySince = time.Time{}
	return events
}

// ObjectScanDue reports whether an object scan may run at now.
func (d *Detector) ObjectScanDue(now time.Time) bool {
	return d.lastObjectScan.IsZero() || now.Sub(d.lastObjectScan) >= d.cfg.ObjectScanInterval
}

// BeginObjectScan claims the object scan slot for now. It returns false if
// the previous scan started less than ObjectScanInterval ago. The slot is
// claimed before the oracle runs, so a slow oracle does not cause a burst of
// back-to-back scans.
func (d *Detector) BeginObjectScan(now time.Time) bool {
	if !d.lastNow.IsZero() && now.Before(d.lastNow) {
		now = d.lastNow
	}
	if !d.ObjectScanDue(now) {
		return false
	}
	d.lastObjectScan = now
	return true
}

// ProcessObjects evaluates the result of an object scan. It applies the
// filter chain, emits one event per class not flagged within ObjectCooldown
// and evicts sightings older than ObjectEviction.
func (d *Detector) ProcessObjects(objects []ObjectDetection, now time.Time) []Event {
	now = d.observe(now)

	var events []Event
	suspicious := d.filter(objects)
	d.suspiciousVisible = len(suspicious)
	for _, obj := range suspicious {
		key := normalizeLabel(obj.Label)
		if last, seen := d.sightings[key]; seen && now.Sub(last) <= d.cfg.ObjectCooldown {
			continue
		}
		events = append(events, d.emit(Event{
			Category:   CategorySuspiciousObject,
			Type:       TypeAlert,
			Message:    fmt.Sprintf(msgSuspicious, obj.Label, obj.Score*100),
			Timestamp:  now,
			Label:      obj.Label,
			Confidence: obj.Score,
			FaceCount:  d.faceCount,
		}))
		d.sightings[key] = now
	}

	for key, seen := range d.sightings {
		if now.Sub(seen) > d.cfg.ObjectEviction {
			delete(d.sightings, key)
		}
	}
	return events
}

// Counters returns the running totals for the session.
func (d *Detector) Counters() Counters {
	return d.counters
}

// Snapshot copies the current state.
func (d *Detector) Snapshot() Snapshot {
	s := Snapshot{
		LastFrame:         d.lastNow,
		LastObjectScan:    d.lastObjectScan,
		FaceCount:         d.faceCount,
		SuspiciousVisible: d.suspiciousVisible,
		Sightings:         make(map[string]time.Time, len(d.sightings)),
		Counters:          d.counters,
		ClampedFrames:     d.clamped,
	}
	if !d.noFaceSince.IsZero() {
		t := d.noFaceSince
		s.NoFaceSince = &t
	}
	if !d.lookingAwaySince.IsZero() {
		t := d.lookingAwaySince
		s.LookingAwaySince = &t
	}
	for k, v := range d.sightings {
		s.Sightings[k] = v
	}
	return s
}

// Reset discards all state, including counters.
func (d *Detector) Reset() {
	*d = Detector{
		cfg:       d.cfg,
		filter:    d.filter,
		sightings: make(map[string]time.Time),
	}
}

// observe clamps now so time never runs backwards.
func (d *Detector) observe(now time.Time) time.Time {
	if !d.lastNow.IsZero() && now.Before(d.lastNow) {
		d.clamped++
		return d.lastNow
	}
	d.lastNow = now
	return now
}

func (d *Detector) emit(e Event) Event {
	if e.Category.IsAnomaly() {
		d.counters.add(e.Category)
	}
	return e
}

// rateLimitPassed reports whether more than interval has passed since last.
// A zero last means no alert has been emitted yet.
func rateLimitPassed(last, now time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) > interval
}
