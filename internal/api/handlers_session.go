// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/validation"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

// StartSessionRequest is the body of POST /api/session/start.
type StartSessionRequest struct {
	CandidateName string `json:"candidateName" validate:"omitempty,max=200"`
}

// StartSessionResponse is returned when a session has been created.
type StartSessionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	// Monitoring is false when the session exists but no monitor could be
	// started for it.
	Monitoring bool `json:"monitoring"`
}

// EndSessionRequest is the body of POST /api/session/end.
type EndSessionRequest struct {
	SessionID string `json:"sessionId" validate:"required,objectid"`
}

// SessionResponse carries one session with its events.
type SessionResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Session *recorder.Session `json:"session"`
}

// ReportResponse carries the report view of a session.
type ReportResponse struct {
	Success bool             `json:"success"`
	Report  *recorder.Report `json:"report"`
}

type sessionNotice struct {
	SessionID     string            `json:"sessionId"`
	CandidateName string            `json:"candidateName"`
	Summary       *recorder.Summary `json:"summary,omitempty"`
	DurationMS    *int64            `json:"duration,omitempty"`
}

// StartSession creates an interview session and starts its monitor.
//
// @Summary Start an interview session
// @Description Creates a session, logs the start notice and launches the anomaly monitor
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body StartSessionRequest false "Candidate"
// @Success 201 {object} StartSessionResponse
// @Failure 400 {object} ErrorResponse "Malformed body"
// @Failure 500 {object} ErrorResponse "Store failure"
// @Router /session/start [post]
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	s, err := h.recorder.StartSession(r.Context(), req.CandidateName)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "Failed to start session", err)
		return
	}

	monitoring := true
	if h.monitors != nil {
		if _, err := h.monitors.Start(s.ID, s.CandidateName); err != nil {
			monitoring = false
			logging.Ctx(r.Context()).Warn().Err(err).Str("session_id", s.ID).Msg("Session started without monitor")
		}
	} else {
		monitoring = false
	}

	h.broadcast(ws.MessageTypeSessionStarted, s.ID, sessionNotice{SessionID: s.ID, CandidateName: s.CandidateName})
	respondJSON(w, http.StatusCreated, StartSessionResponse{
		Success:    true,
		Message:    "Interview session started",
		SessionID:  s.ID,
		Monitoring: monitoring,
	})
}

// EndSession stops the monitor, drains queued events and stores the summary.
//
// @Summary End an interview session
// @Description Stops monitoring, flushes pending events and computes the session summary
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body EndSessionRequest true "Session"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Failure 500 {object} ErrorResponse "Store failure"
// @Router /session/end [post]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	var req EndSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}
	ctx := logging.ContextWithSessionID(r.Context(), req.SessionID)

	if h.monitors != nil {
		if _, err := h.monitors.Stop(req.SessionID); err != nil && !errors.Is(err, monitor.ErrMonitorNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to stop monitor")
		}
	}
	h.forgetLimiter(req.SessionID)
	h.flushQueue(ctx)

	s, err := h.recorder.EndSession(ctx, req.SessionID)
	if err != nil {
		respondDomainError(w, r, err, "Failed to end session")
		return
	}
	h.reports.Remove(s.ID)

	h.broadcast(ws.MessageTypeSessionEnded, s.ID, sessionNotice{
		SessionID:     s.ID,
		CandidateName: s.CandidateName,
		Summary:       &s.Summary,
		DurationMS:    s.Duration,
	})
	respondJSON(w, http.StatusOK, SessionResponse{
		Success: true,
		Message: "Interview session ended",
		Session: s,
	})
}

// flushQueue waits, bounded by the configured flush timeout, until queued
// anomalies are persisted so the summary sees them.
func (h *Handler) flushQueue(ctx context.Context) {
	if h.queue == nil {
		return
	}
	if h.config != nil && h.config.Queue.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Queue.FlushTimeout)
		defer cancel()
	}
	if err := h.queue.Flush(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("pending", h.queue.Stats().Depth).Msg("Event queue not drained before session end")
	}
}

// SessionDetails returns a session with its events.
//
// @Summary Get session details
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /session/details/{id} [get]
func (h *Handler) SessionDetails(w http.ResponseWriter, r *http.Request) {
	s, err := h.recorder.SessionDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err, "Failed to load session")
		return
	}
	respondJSON(w, http.StatusOK, SessionResponse{Success: true, Session: s})
}

// SessionReport returns the report card of a session.
//
// @Summary Get session report
// @Description Duration in minutes, category counters and counts per event type
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Router /session/report/{id} [get]
func (h *Handler) SessionReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if rep, ok := h.reports.Get(id); ok {
		respondJSON(w, http.StatusOK, ReportResponse{Success: true, Report: rep})
		return
	}
	rep, err := h.recorder.Report(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err, "Failed to build report")
		return
	}
	if !rep.Active {
		h.reports.Add(id, rep)
	}
	respondJSON(w, http.StatusOK, ReportResponse{Success: true, Report: rep})
}
