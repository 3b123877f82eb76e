// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// captureGlobal swaps the global logger for one writing to a buffer.
func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(prev) })
	return &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestCtxAddsIdentifiers(t *testing.T) {
	buf := captureGlobal(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr1234")
	ctx = ContextWithSessionID(ctx, "0123456789abcdef01234567")

	Ctx(ctx).Info().Msg("hello")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
	if m["correlation_id"] != "corr1234" {
		t.Errorf("correlation_id = %v", m["correlation_id"])
	}
	if m["session_id"] != "0123456789abcdef01234567" {
		t.Errorf("session_id = %v", m["session_id"])
	}
}

func TestCtxWithoutIdentifiers(t *testing.T) {
	buf := captureGlobal(t)

	Ctx(context.Background()).Info().Msg("plain")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	for _, k := range []string{"request_id", "correlation_id", "session_id"} {
		if _, ok := m[k]; ok {
			t.Errorf("unexpected field %s in %v", k, m)
		}
	}
}

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("correlation ID length = %d, want 8", got)
	}
	a, b := GenerateRequestID(), GenerateRequestID()
	if a == b {
		t.Error("request IDs should be unique")
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t)

	l := WithComponent("monitor")
	l.Info().Msg("tick")

	m := decodeLine(t, strings.TrimSpace(buf.String()))
	if m["component"] != "monitor" {
		t.Errorf("component = %v", m["component"])
	}
}
