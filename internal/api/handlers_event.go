// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/validation"
)

// CreateEventRequest is the body of POST /api/event.
type CreateEventRequest struct {
	SessionID string `json:"sessionId" validate:"required,objectid"`
	Type      string `json:"type" validate:"required,eventtype"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// EventResponse carries one stored event.
type EventResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Event   *recorder.Event `json:"event"`
}

// EventsResponse carries the event log of a session.
type EventsResponse struct {
	Success bool             `json:"success"`
	Events  []recorder.Event `json:"events"`
}

// CreateEvent appends an event to a session's log.
//
// @Summary Log an event
// @Tags Events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event"
// @Success 201 {object} EventResponse
// @Failure 400 {object} ErrorResponse "Invalid event"
// @Failure 404 {object} ErrorResponse "Session not found"
// @Failure 500 {object} ErrorResponse "Store failure"
// @Router /event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	e, err := h.recorder.LogEvent(r.Context(), req.SessionID, detection.EventType(req.Type), req.Message)
	if err != nil {
		respondDomainError(w, r, err, "Failed to log event")
		return
	}
	respondJSON(w, http.StatusCreated, EventResponse{Success: true, Message: "Event logged", Event: e})
}

// SessionEvents lists a session's events, newest first.
//
// @Summary List session events
// @Tags Events
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} EventsResponse
// @Failure 400 {object} ErrorResponse "Malformed session ID"
// @Router /event/session/{sessionId} [get]
func (h *Handler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.recorder.SessionEvents(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		respondDomainError(w, r, err, "Failed to list events")
		return
	}
	if events == nil {
		events = []recorder.Event{}
	}
	respondJSON(w, http.StatusOK, EventsResponse{Success: true, Events: events})
}
