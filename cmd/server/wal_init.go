// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package main

import (
	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/wal"
)

// openWAL returns nil when the WAL is disabled.
func openWAL(cfg config.WALConfig) (*wal.BadgerWAL, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("WAL disabled; queued anomalies are lost on crash")
		return nil, nil
	}
	logging.Info().Str("path", cfg.Path).Bool("sync_writes", cfg.SyncWrites).Msg("Opening WAL")
	w, err := wal.Open(wal.ConfigFrom(cfg))
	if err != nil {
		return nil, err
	}
	if n := w.PendingCount(); n > 0 {
		logging.Info().Int("pending", n).Msg("WAL has pending anomalies to replay")
	}
	return w, nil
}
