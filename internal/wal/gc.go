// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package wal

import (
	"context"
	"time"

	"github.com/tomtom215/focusguard/internal/logging"
)

// GCService runs value log GC on an interval. It implements suture.Service.
type GCService struct {
	wal      *BadgerWAL
	interval time.Duration
}

// NewGCService creates a GC loop for w.
func NewGCService(w *BadgerWAL, interval time.Duration) *GCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &GCService{wal: w, interval: interval}
}

// Serve runs until ctx is canceled.
func (s *GCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.wal.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("WAL garbage collection failed")
			}
		}
	}
}

func (s *GCService) String() string { return "wal-gc" }
