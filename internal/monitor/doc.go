// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package monitor drives a per-session anomaly detector from a frame source.

A Driver ticks at the configured frame interval (100ms by default). On each
tick it captures the latest frame, runs the face oracle synchronously and
feeds the result to the session's detection.Detector. When an object scan is
due it starts the object oracle on its own goroutine; the result comes back
over a channel and is evaluated on the driver goroutine, so the detector is
only ever touched by one goroutine. A scan that comes due while the previous
one is still running is dropped, never queued.

Oracle failures are logged and counted; the frame loop carries on. A nil
oracle runs the driver in degraded mode with that branch disabled.

After every frame the driver publishes an immutable State through an atomic
pointer so HTTP handlers can inspect timers and counters without locking.

The Manager owns one driver per interview session, fed by a PushFeed that
clients fill with their own model output, and reaps stopped monitors after
the configured retention.
*/
package monitor
