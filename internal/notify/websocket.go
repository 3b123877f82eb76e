// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package notify

import (
	"context"

	"github.com/tomtom215/focusguard/internal/eventbus"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

// Broadcaster is implemented by *websocket.Hub.
type Broadcaster interface {
	BroadcastJSON(messageType, sessionID string, data interface{}) bool
}

// WebSocketBridge pushes anomalies to dashboard clients.
type WebSocketBridge struct {
	hub Broadcaster
}

func NewWebSocketBridge(hub Broadcaster) *WebSocketBridge {
	return &WebSocketBridge{hub: hub}
}

// Handle never fails: a full hub buffer drops the push, and redelivering
// a stale live update has no value.
func (b *WebSocketBridge) Handle(_ context.Context, a eventbus.AnomalyMessage) error {
	b.hub.BroadcastJSON(ws.MessageTypeAnomaly, a.SessionID, a)
	return nil
}
