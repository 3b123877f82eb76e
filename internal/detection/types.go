// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import (
	"time"
)

// Box is a normalized bounding box. All fields are nominally in [0,1] but
// out-of-range values are accepted as-is.
type Box struct {
	CenterX float64 `json:"x_center"`
	CenterY float64 `json:"y_center"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Point is a normalized landmark coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FaceDetection is one face reported by the face oracle.
type FaceDetection struct {
	Box       Box     `json:"box"`
	Landmarks []Point `json:"landmarks,omitempty"`
}

// PixelBox is an object bounding box in source-image pixels.
type PixelBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width/height, or 0 for a degenerate box.
func (b PixelBox) AspectRatio() float64 {
	if b.Height <= 0 {
		return 0
	}
	return b.Width / b.Height
}

// ObjectDetection is one object reported by the object oracle.
type ObjectDetection struct {
	Label string   `json:"label"`
	Score float64  `json:"score"`
	Box   PixelBox `json:"box"`
}

// Category identifies which rule produced an event.
type Category string

const (
	CategoryNoFace           Category = "no-face"
	CategoryLookingAway      Category = "looking-away"
	CategoryMultipleFaces    Category = "multiple-faces"
	CategorySuspiciousObject Category = "suspicious-object"

	// Recovery notices are informational and never counted.
	CategoryFaceRecovered Category = "face-recovered"
	CategoryGazeRecovered Category = "gaze-recovered"
)

// IsAnomaly reports whether events of this category are counted.
func (c Category) IsAnomaly() bool {
	switch c {
	case CategoryNoFace, CategoryLookingAway, CategoryMultipleFaces, CategorySuspiciousObject:
		return true
	default:
		return false
	}
}

// EventType is the severity tag persisted with every event log entry.
type EventType string

const (
	TypeInfo    EventType = "info"
	TypeWarning EventType = "warning"
	TypeAlert   EventType = "alert"
	TypeSuccess EventType = "success"
)

// Valid reports whether t is one of the four known event types.
func (t EventType) Valid() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeAlert, TypeSuccess:
		return true
	default:
		return false
	}
}

// Event is a single anomaly or recovery notice emitted by the Detector.
type Event struct {
	Category  Category      `json:"category"`
	Type      EventType     `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Elapsed   time.Duration `json:"elapsed_ms,omitempty"`

	FaceCount  int     `json:"face_count,omitempty"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Counters are running per-category totals for one session.
type Counters struct {
	NoFace           int `json:"no_face"`
	LookingAway      int `json:"looking_away"`
	MultipleFaces    int `json:"multiple_faces"`
	SuspiciousObject int `json:"suspicious_object"`
	Total            int `json:"total"`
}

func (c *Counters) add(cat Category) {
	switch cat {
	case CategoryNoFace:
		c.NoFace++
	case CategoryLookingAway:
		c.LookingAway++
	case CategoryMultipleFaces:
		c.MultipleFaces++
	case CategorySuspiciousObject:
		c.SuspiciousObject++
	default:
		return
	}
	c.Total++
}

// Snapshot is a read-only copy of detector state for inspection.
type Snapshot struct {
	NoFaceSince       *time.Time           `json:"no_face_since,omitempty"`
	LookingAwaySince  *time.Time           `json:"looking_away_since,omitempty"`
	LastFrame         time.Time            `json:"last_frame"`
	LastObjectScan    time.Time            `json:"last_object_scan"`
	FaceCount         int                  `json:"face_count"`
	SuspiciousVisible int                  `json:"suspicious_visible"`
	Sightings         map[string]time.Time `json:"sightings"`
	Counters          Counters             `json:"counters"`
	ClampedFrames     uint64               `json:"clamped_frames"`
}
