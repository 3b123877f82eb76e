// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"net/http"

	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/recorder"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

// WebSocket connects a dashboard to live anomaly broadcasts. The optional
// sessionId query parameter limits the stream to one session.
//
// @Summary Dashboard websocket
// @Tags Live
// @Param sessionId query string false "Session ID filter"
// @Success 101 "Switching protocols"
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 503 {object} ErrorResponse "WebSocket service unavailable"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, "WebSocket service unavailable", nil)
		return
	}
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID != "" && !recorder.ValidID(sessionID) {
		respondError(w, r, http.StatusBadRequest, "Invalid session ID format", nil)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, sessionID)
	select {
	case h.wsHub.Register <- client:
		client.Start()
	case <-h.wsHub.Done():
		conn.Close()
	case <-r.Context().Done():
		conn.Close()
	}
}
