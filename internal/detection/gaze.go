// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import "math"

// FrameCenterX is the horizontal middle of a normalized frame.
const FrameCenterX = 0.5

// GazeDeviation is the horizontal distance of the face center from the
// middle of the frame.
func GazeDeviation(face FaceDetection) float64 {
	return math.Abs(face.Box.CenterX - FrameCenterX)
}

// IsLookingAway is a coarse proxy for gaze diversion: the face is treated as
// looking away when its center strays more than margin from the middle.
func IsLookingAway(face FaceDetection, margin float64) bool {
	return GazeDeviation(face) > margin
}
