// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
)

// feedIdleTimeout closes an ingest websocket that sent nothing for this long.
const feedIdleTimeout = 60 * time.Second

// MonitorStateResponse carries the live detector state of a session.
type MonitorStateResponse struct {
	Success bool          `json:"success"`
	State   monitor.State `json:"state"`
}

func (h *Handler) sessionParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "sessionId")
	if !recorder.ValidID(id) {
		respondError(w, r, http.StatusBadRequest, "Invalid session ID format", nil)
		return "", false
	}
	if h.monitors == nil {
		respondError(w, r, http.StatusServiceUnavailable, "Monitoring unavailable", nil)
		return "", false
	}
	return id, true
}

// runningMonitor responds with an error unless the session has a running
// monitor.
func (h *Handler) runningMonitor(w http.ResponseWriter, r *http.Request, id, action string) bool {
	st, err := h.monitors.Snapshot(id)
	if err == nil && !st.Running {
		err = monitor.ErrMonitorStopped
	}
	if err != nil {
		respondDomainError(w, r, err, action)
		return false
	}
	return true
}

// PushObservation hands one frame's detections to the session monitor.
//
// @Summary Push an observation
// @Description Submits face and optional object detections for the latest frame
// @Tags Monitor
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param observation body monitor.Observation true "Detections"
// @Success 202 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Malformed body or session ID"
// @Failure 404 {object} ErrorResponse "No monitor for session"
// @Failure 409 {object} ErrorResponse "Monitor stopped"
// @Failure 429 {object} ErrorResponse "Ingest rate exceeded"
// @Router /monitor/{sessionId}/observations [post]
func (h *Handler) PushObservation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionParam(w, r)
	if !ok {
		return
	}
	var o monitor.Observation
	if err := decodeJSON(w, r, &o); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid observation", err)
		return
	}
	if !h.runningMonitor(w, r, id, "Failed to push observation") {
		return
	}
	if !h.ingestLimiter(id).Allow() {
		respondError(w, r, http.StatusTooManyRequests, "Observation rate exceeded", nil)
		return
	}
	if err := h.monitors.Push(id, o); err != nil {
		respondDomainError(w, r, err, "Failed to push observation")
		return
	}
	respondJSON(w, http.StatusAccepted, MessageResponse{Success: true, Message: "Observation accepted"})
}

// MonitorFeed upgrades to a websocket that streams observations into the
// session monitor. Messages over the ingest rate are dropped.
//
// @Summary Stream observations
// @Tags Monitor
// @Param sessionId path string true "Session ID"
// @Success 101 "Switching protocols"
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 404 {object} ErrorResponse "No monitor for session"
// @Failure 409 {object} ErrorResponse "Monitor stopped"
// @Router /monitor/{sessionId}/feed [get]
func (h *Handler) MonitorFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionParam(w, r)
	if !ok {
		return
	}
	if !h.runningMonitor(w, r, id, "Failed to open feed") {
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}
	h.readFeed(conn, id)
}

func (h *Handler) readFeed(conn *gorillaws.Conn, sessionID string) {
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)
	limiter := h.ingestLimiter(sessionID)
	log := logging.With().Str("session_id", sessionID).Logger()

	var received, dropped uint64
	defer func() {
		log.Debug().Uint64("received", received).Uint64("dropped", dropped).Msg("Observation feed closed")
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(feedIdleTimeout)); err != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Observation feed read error")
			}
			return
		}
		received++
		metrics.WSMessagesReceived.Inc()

		var o monitor.Observation
		if err := json.Unmarshal(data, &o); err != nil {
			log.Debug().Err(err).Msg("Discarding malformed observation")
			continue
		}
		if !limiter.Allow() {
			dropped++
			continue
		}
		if err := h.monitors.Push(sessionID, o); err != nil {
			msg := gorillaws.FormatCloseMessage(gorillaws.CloseNormalClosure, "monitor stopped")
			_ = conn.WriteControl(gorillaws.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

// MonitorState returns the detector timers and counters of a session.
//
// @Summary Get monitor state
// @Tags Monitor
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} MonitorStateResponse
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 404 {object} ErrorResponse "No monitor for session"
// @Router /monitor/{sessionId}/state [get]
func (h *Handler) MonitorState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionParam(w, r)
	if !ok {
		return
	}
	st, err := h.monitors.Snapshot(id)
	if err != nil {
		respondDomainError(w, r, err, "Failed to read monitor state")
		return
	}
	respondJSON(w, http.StatusOK, MonitorStateResponse{Success: true, State: st})
}
