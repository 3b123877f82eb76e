// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/focusguard/internal/eventqueue"
)

const readinessTimeout = 2 * time.Second

// LivenessResponse is returned by the liveness probe.
type LivenessResponse struct {
	Success bool    `json:"success"`
	Alive   bool    `json:"alive"`
	Uptime  float64 `json:"uptime"`
}

// ReadinessResponse is returned by the readiness probe.
type ReadinessResponse struct {
	Success           bool              `json:"success"`
	Status            string            `json:"status"`
	DatabaseConnected bool              `json:"databaseConnected"`
	ActiveMonitors    int               `json:"activeMonitors"`
	Queue             *eventqueue.Stats `json:"queue,omitempty"`
	BusBackend        string            `json:"busBackend,omitempty"`
	BusBreaker        string            `json:"busBreaker,omitempty"`
	Uptime            float64           `json:"uptime"`
}

// HealthLive reports that the process is up.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} LivenessResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, LivenessResponse{
		Success: true,
		Alive:   true,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the store is reachable and the event queue
// accepts work.
//
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := ReadinessResponse{
		DatabaseConnected: h.recorder != nil && h.recorder.Store().Ping(ctx) == nil,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	ready := resp.DatabaseConnected
	if h.monitors != nil {
		resp.ActiveMonitors = h.monitors.Active()
	}
	if h.queue != nil {
		stats := h.queue.Stats()
		resp.Queue = &stats
		ready = ready && !stats.Closed
	}
	if h.bus != nil {
		resp.BusBackend = h.bus.Backend()
		resp.BusBreaker = h.bus.BreakerState()
	}

	status := http.StatusOK
	resp.Success, resp.Status = true, "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		resp.Success, resp.Status = false, "not_ready"
	}
	respondJSON(w, status, resp)
}
