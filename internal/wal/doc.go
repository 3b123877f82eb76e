// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package wal is a Badger-backed write-ahead log for recorder deliveries.
//
// Each queued event is written under pending:<id> before it is handed to a
// delivery worker and deleted once the recorder acknowledges it. Entries
// left behind by a crash are returned by GetPending and replayed on the next
// start. Entries carry a Badger TTL so abandoned ones expire on their own.
package wal
