// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package detection turns per-frame face and object detections into debounced
// anomaly events for a proctored interview session.
//
// Detection Architecture:
//
//	Frame -> Face/Object oracles -> Detector.ProcessFrame -> []Event -> Sink
//	                                     |
//	                                     v
//	                         timers, rate limits, counters
//
// A Detector owns all temporal state for exactly one session: the start of the
// current no-face and looking-away streaks, the last alert per category, and
// the recent object sightings used for per-class cooldowns. It holds no locks
// and must be driven from a single goroutine (see the monitor package).
//
// Rules:
//   - No face: alert once the streak reaches NoFaceThreshold, repeated at most
//     once per NoFaceRepeatInterval while the streak lasts
//   - Looking away: a single face whose center x deviates from 0.5 by more than
//     GazeMargin for LookingAwayThreshold
//   - Multiple faces: alert at most once per MultipleFacesInterval; always
//     resets the other two streaks
//   - Suspicious objects: vocabulary match above MinConfidence, evaluated at
//     most once per ObjectScanInterval with a per-class cooldown
//
// Timestamps are supplied by the caller. A timestamp earlier than the last one
// seen is clamped so elapsed durations never go negative.
package detection
