// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import "testing"

func TestIsLookingAway(t *testing.T) {
	tests := []struct {
		x    float64
		want bool
	}{
		{0.5, false},
		{0.55, false},
		{0.29, true},
		{0.75, true},
		{-0.4, true}, // out of range input is accepted
		{1.6, true},
	}
	for _, tt := range tests {
		face := FaceDetection{Box: Box{CenterX: tt.x}}
		if got := IsLookingAway(face, 0.2); got != tt.want {
			t.Errorf("IsLookingAway(x=%v) = %v, want %v (deviation %v)", tt.x, got, tt.want, GazeDeviation(face))
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Vocabulary = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty vocabulary")
	}
	cfg = DefaultConfig()
	cfg.NoFaceThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero threshold")
	}
}

func TestRepeatIntervalDefaultsToThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoFaceRepeatInterval = 0
	cfg.LookingAwayRepeatInterval = 0
	if cfg.noFaceRepeat() != cfg.NoFaceThreshold || cfg.lookingAwayRepeat() != cfg.LookingAwayThreshold {
		t.Error("zero repeat interval should fall back to the threshold")
	}
}
