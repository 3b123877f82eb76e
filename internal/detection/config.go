// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import (
	"fmt"
	"time"

	"github.com/tomtom215/focusguard/internal/config"
)

// Config holds the thresholds used by a Detector.
type Config struct {
	NoFaceThreshold time.Duration
	// NoFaceRepeatInterval is the minimum gap between two no-face alerts.
	// Zero means "same as NoFaceThreshold".
	NoFaceRepeatInterval time.Duration

	LookingAwayThreshold      time.Duration
	LookingAwayRepeatInterval time.Duration

	MultipleFacesInterval time.Duration

	// GazeMargin is the allowed horizontal deviation of the face center from
	// the middle of the frame, in normalized units.
	GazeMargin float64

	ObjectScanInterval time.Duration
	ObjectCooldown     time.Duration
	ObjectEviction     time.Duration
	MinConfidence      float64
	Vocabulary         []string
	IgnoredLabels      []string

	BookFilter BookFilterConfig
}

// BookFilterConfig narrows "book" detections to plausible shapes.
type BookFilterConfig struct {
	Enabled        bool
	MinAspectRatio float64
	MaxAspectRatio float64
	MinWidth       float64
	MinHeight      float64
	MinConfidence  float64
}

// DefaultVocabulary is the set of object classes treated as suspicious.
var DefaultVocabulary = []string{"book", "notebook", "cell phone", "laptop", "mouse", "keyboard", "remote"}

// DefaultConfig returns the stock proctoring thresholds.
func DefaultConfig() Config {
	return Config{
		NoFaceThreshold:           10 * time.Second,
		NoFaceRepeatInterval:      10 * time.Second,
		LookingAwayThreshold:      5 * time.Second,
		LookingAwayRepeatInterval: 5 * time.Second,
		MultipleFacesInterval:     5 * time.Second,
		GazeMargin:                0.2,
		ObjectScanInterval:        2 * time.Second,
		ObjectCooldown:            10 * time.Second,
		ObjectEviction:            15 * time.Second,
		MinConfidence:             0.6,
		Vocabulary:                append([]string(nil), DefaultVocabulary...),
		IgnoredLabels:             []string{"person"},
		BookFilter: BookFilterConfig{
			Enabled:        true,
			MinAspectRatio: 0.6,
			MaxAspectRatio: 1.8,
			MinWidth:       50,
			MinHeight:      30,
			MinConfidence:  0.65,
		},
	}
}

// ConfigFrom maps the detection section of the service configuration.
func ConfigFrom(c config.DetectionConfig) Config {
	return Config{
		NoFaceThreshold:           c.NoFaceThreshold,
		NoFaceRepeatInterval:      c.NoFaceRepeatInterval,
		LookingAwayThreshold:      c.LookingAwayThreshold,
		LookingAwayRepeatInterval: c.LookingAwayRepeatInterval,
		MultipleFacesInterval:     c.MultipleFacesInterval,
		GazeMargin:                c.GazeMargin,
		ObjectScanInterval:        c.ObjectScanInterval,
		ObjectCooldown:            c.ObjectCooldown,
		ObjectEviction:            c.ObjectEviction,
		MinConfidence:             c.ObjectMinConfidence,
		Vocabulary:                append([]string(nil), c.SuspiciousObjects...),
		IgnoredLabels:             append([]string(nil), c.IgnoredObjects...),
		BookFilter: BookFilterConfig{
			Enabled:        c.BookFilter.Enabled,
			MinAspectRatio: c.BookFilter.MinAspectRatio,
			MaxAspectRatio: c.BookFilter.MaxAspectRatio,
			MinWidth:       c.BookFilter.MinWidth,
			MinHeight:      c.BookFilter.MinHeight,
			MinConfidence:  c.BookFilter.MinConfidence,
		},
	}
}

// Validate reports the first invalid threshold.
func (c Config) Validate() error {
	if c.NoFaceThreshold <= 0 {
		return fmt.Errorf("no-face threshold must be positive, got %s", c.NoFaceThreshold)
	}
	if c.LookingAwayThreshold <= 0 {
		return fmt.Errorf("looking-away threshold must be positive, got %s", c.LookingAwayThreshold)
	}
	if c.GazeMargin <= 0 {
		return fmt.Errorf("gaze margin must be positive, got %v", c.GazeMargin)
	}
	if c.ObjectScanInterval <= 0 {
		return fmt.Errorf("object scan interval must be positive, got %s", c.ObjectScanInterval)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("object confidence floor must be within [0,1], got %v", c.MinConfidence)
	}
	if len(c.Vocabulary) == 0 {
		return fmt.Errorf("suspicious object vocabulary is empty")
	}
	return nil
}

func (c Config) noFaceRepeat() time.Duration {
	if c.NoFaceRepeatInterval > 0 {
		return c.NoFaceRepeatInterval
	}
	return c.NoFaceThreshold
}

func (c Config) lookingAwayRepeat() time.Duration {
	if c.LookingAwayRepeatInterval > 0 {
		return c.LookingAwayRepeatInterval
	}
	return c.LookingAwayThreshold
}
