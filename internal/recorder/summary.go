// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package recorder

import "strings"

// Keywords matched against lowercased event messages when summarizing.
const (
	keywordNoFace      = "no face detected"
	keywordLookingAway = "looking away"
	keywordMultiple    = "multiple faces detected"
	keywordSuspicious  = "suspicious object detected"
)

// Summarize counts events by message keyword. TotalEvents counts every
// event, including informational ones.
func Summarize(events []Event) Summary {
	s := Summary{TotalEvents: len(events)}
	for _, e := range events {
		msg := strings.ToLower(e.Message)
		if strings.Contains(msg, keywordNoFace) {
			s.NoFaceEvents++
		}
		if strings.Contains(msg, keywordLookingAway) {
			s.LookingAwayEvents++
		}
		if strings.Contains(msg, keywordMultiple) {
			s.MultipleFaceEvents++
		}
		if strings.Contains(msg, keywordSuspicious) {
			s.SuspiciousObjectEvents++
		}
	}
	return s
}
