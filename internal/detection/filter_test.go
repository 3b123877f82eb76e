// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package detection

import (
	"testing"
)

func labels(in []ObjectDetection) []string {
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = d.Label
	}
	return out
}

func TestFilters(t *testing.T) {
	in := []ObjectDetection{
		{Label: "person", Score: 0.99},
		{Label: "cell phone", Score: 0.61},
		{Label: "cell phone", Score: 0.6},
		{Label: " Laptop ", Score: 0.8},
		{Label: "cup", Score: 0.95},
		{Label: "book", Score: 0.7, Box: PixelBox{Width: 100, Height: 80}},
		{Label: "book", Score: 0.7, Box: PixelBox{Width: 300, Height: 80}},
	}

	got := labels(Filters(DefaultConfig())(in))
	want := []string{"cell phone", " Laptop ", "book"}
	if len(got) != len(want) {
		t.Fatalf("Filters() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Filters()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBookShapeFilterDisabled(t *testing.T) {
	in := []ObjectDetection{{Label: "book", Score: 0.61, Box: PixelBox{Width: 500, Height: 10}}}
	if got := BookShapeFilter(BookFilterConfig{})(in); len(got) != 1 {
		t.Errorf("disabled book filter dropped %v", in)
	}
}

func TestBookShapeFilterNarrowsOnly(t *testing.T) {
	cfg := DefaultConfig()
	generic := SuspiciousFilter(cfg.Vocabulary, cfg.MinConfidence)
	refined := Chain(BookShapeFilter(cfg.BookFilter), generic)

	var in []ObjectDetection
	for _, score := range []float64{0.5, 0.61, 0.66, 0.9} {
		for _, w := range []float64{20, 60, 120, 400} {
			for _, h := range []float64{20, 40, 100} {
				in = append(in, ObjectDetection{Label: "book", Score: score, Box: PixelBox{Width: w, Height: h}})
			}
		}
	}
	passed := map[ObjectDetection]bool{}
	for _, d := range generic(in) {
		passed[d] = true
	}
	for _, d := range refined(in) {
		if !passed[d] {
			t.Errorf("refined filter admitted %+v which the generic filter rejects", d)
		}
	}
}

func TestAspectRatio(t *testing.T) {
	if got := (PixelBox{Width: 100, Height: 50}).AspectRatio(); got != 2 {
		t.Errorf("AspectRatio = %v, want 2", got)
	}
	if got := (PixelBox{Width: 100}).AspectRatio(); got != 0 {
		t.Errorf("degenerate AspectRatio = %v, want 0", got)
	}
}
