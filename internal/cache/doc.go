// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package cache provides a bounded, TTL-expiring LRU map.

It backs two things: the anomaly ID set that makes bus consumers skip
redelivered messages, and the report cache for ended sessions.

	seen := cache.NewLRU[string, struct{}](4096, 10*time.Minute)
	if seen.Seen(id) {
	    return nil // redelivery
	}

All methods are safe for concurrent use.
*/
package cache
