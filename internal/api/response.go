// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

// MessageResponse acknowledges a request that returns no resource.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes a failure body. err, when set, is logged but never
// sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Int("status", status).Str("path", r.URL.Path).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, ErrorResponse{
		Success:   false,
		Message:   message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Success:   false,
		Message:   verr.Error(),
		Errors:    verr.Fields(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	err := json.NewDecoder(body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// respondDomainError maps recorder and monitor errors to HTTP statuses.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, recorder.ErrInvalidSessionID):
		respondError(w, r, http.StatusBadRequest, "Invalid session ID format", err)
	case errors.Is(err, recorder.ErrInvalidEvent):
		respondError(w, r, http.StatusBadRequest, "Invalid event", err)
	case errors.Is(err, recorder.ErrSessionNotFound):
		respondError(w, r, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, monitor.ErrMonitorNotFound):
		respondError(w, r, http.StatusNotFound, "No monitor running for session", err)
	case errors.Is(err, monitor.ErrMonitorStopped):
		respondError(w, r, http.StatusConflict, "Monitor already stopped", err)
	case errors.Is(err, monitor.ErrMonitorExists):
		respondError(w, r, http.StatusConflict, "Monitor already running", err)
	case errors.Is(err, monitor.ErrTooManyMonitors):
		respondError(w, r, http.StatusServiceUnavailable, "Too many active monitors", err)
	default:
		respondError(w, r, http.StatusInternalServerError, fallback, err)
	}
}
