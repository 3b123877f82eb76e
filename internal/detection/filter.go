// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import (
	"strings"
)

// ObjectFilter narrows a set of object detections. Filters never add or
// modify detections.
type ObjectFilter func([]ObjectDetection) []ObjectDetection

// Chain applies filters in order.
func Chain(filters ...ObjectFilter) ObjectFilter {
	return func(in []ObjectDetection) []ObjectDetection {
		out := in
		for _, f := range filters {
			out = f(out)
		}
		return out
	}
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if n := normalizeLabel(l); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func keep(in []ObjectDetection, pred func(ObjectDetection) bool) []ObjectDetection {
	out := make([]ObjectDetection, 0, len(in))
	for _, d := range in {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// DropLabels removes detections whose label is in labels.
func DropLabels(labels ...string) ObjectFilter {
	set := labelSet(labels)
	return func(in []ObjectDetection) []ObjectDetection {
		return keep(in, func(d ObjectDetection) bool {
			_, drop := set[normalizeLabel(d.Label)]
			return !drop
		})
	}
}

// BookShapeFilter drops "book" detections whose box or score is implausible.
// Other labels pass through untouched.
func BookShapeFilter(cfg BookFilterConfig) ObjectFilter {
	return func(in []ObjectDetection) []ObjectDetection {
		if !cfg.Enabled {
			return in
		}
		return keep(in, func(d ObjectDetection) bool {
			if normalizeLabel(d.Label) != "book" {
				return true
			}
			ar := d.Box.AspectRatio()
			return ar >= cfg.MinAspectRatio && ar <= cfg.MaxAspectRatio &&
				d.Box.Width > cfg.MinWidth && d.Box.Height > cfg.MinHeight &&
				d.Score > cfg.MinConfidence
		})
	}
}

// SuspiciousFilter keeps vocabulary matches scoring strictly above minScore.
func SuspiciousFilter(vocabulary []string, minScore float64) ObjectFilter {
	set := labelSet(vocabulary)
	return func(in []ObjectDetection) []ObjectDetection {
		return keep(in, func(d ObjectDetection) bool {
			_, ok := set[normalizeLabel(d.Label)]
			return ok && d.Score > minScore
		})
	}
}

// Filters returns the default chain for cfg.
func Filters(cfg Config) ObjectFilter {
	return Chain(
		DropLabels(cfg.IgnoredLabels...),
		BookShapeFilter(cfg.BookFilter),
		SuspiciousFilter(cfg.Vocabulary, cfg.MinConfidence),
	)
}
