// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package wal

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func setupTestWAL(t *testing.T) *BadgerWAL {
	t.Helper()
	w, err := Open(Config{Path: t.TempDir(), EntryTTL: time.Hour})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWriteConfirm(t *testing.T) {
	w := setupTestWAL(t)
	ctx := context.Background()

	id, err := w.Write(ctx, testPayload{SessionID: "s1", Message: "Face detected again"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", w.PendingCount())
	}

	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("pending = %+v", pending)
	}
	var p testPayload
	if err := pending[0].UnmarshalPayload(&p); err != nil {
		t.Fatal(err)
	}
	if p.Message != "Face detected again" {
		t.Errorf("payload = %+v", p)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if w.PendingCount() != 0 {
		t.Errorf("PendingCount after confirm = %d", w.PendingCount())
	}
	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm err = %v, want ErrEntryNotFound", err)
	}
}

func TestUpdateAttempt(t *testing.T) {
	w := setupTestWAL(t)
	ctx := context.Background()

	id, _ := w.Write(ctx, testPayload{SessionID: "s1"})
	for i := 0; i < 3; i++ {
		if err := w.UpdateAttempt(ctx, id, "store unavailable"); err != nil {
			t.Fatalf("UpdateAttempt: %v", err)
		}
	}
	pending, _ := w.GetPending(ctx)
	if pending[0].Attempts != 3 || pending[0].LastError != "store unavailable" {
		t.Errorf("entry = %+v", pending[0])
	}
	if err := w.UpdateAttempt(ctx, "missing", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	w, err := Open(Config{Path: dir, SyncWrites: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := w.Write(ctx, testPayload{SessionID: "s"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w, err = Open(Config{Path: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	pending, err := w.GetPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 5 {
		t.Errorf("recovered %d entries, want 5", len(pending))
	}
}

func TestClosed(t *testing.T) {
	w, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(context.Background(), testPayload{}); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write after close err = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestWriteValidation(t *testing.T) {
	w := setupTestWAL(t)
	if _, err := w.Write(context.Background(), nil); !errors.Is(err, ErrNilPayload) {
		t.Errorf("err = %v, want ErrNilPayload", err)
	}
	if err := w.Delete(context.Background(), ""); !errors.Is(err, ErrEmptyEntryID) {
		t.Errorf("err = %v, want ErrEmptyEntryID", err)
	}
	if err := w.RunGC(); err != nil {
		t.Errorf("RunGC: %v", err)
	}
}
