// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package websocket pushes live proctoring updates to dashboard clients.

A Hub owns the set of connected clients and fans messages out to them; each
Client runs a read pump (pings, session subscriptions) and a write pump
(queued messages, keepalive pings) on its own goroutines.

Clients may narrow the stream to one interview session, either with the
session query parameter at connect time or by sending

	{"type": "subscribe", "data": "<sessionId>"}

Messages carrying no session ID are delivered to everyone. A client whose
send buffer is full is disconnected rather than allowed to stall the hub.

Message types:

  - anomaly: a detector anomaly or recovery notice
  - session_started, session_ended: session lifecycle
  - ping / pong: application-level keepalive
*/
package websocket
