// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/focusguard/internal/cache"
	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/eventqueue"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

const (
	reportCacheSize = 1024
	reportCacheTTL  = 10 * time.Minute
)

// Monitors is the part of monitor.Manager the handlers use.
type Monitors interface {
	Start(sessionID, candidateName string) (monitor.State, error)
	Stop(sessionID string) (monitor.State, error)
	Push(sessionID string, o monitor.Observation) error
	Snapshot(sessionID string) (monitor.State, error)
	Active() int
}

// EventQueue is the part of eventqueue.Queue the handlers use.
type EventQueue interface {
	Flush(ctx context.Context) error
	Stats() eventqueue.Stats
}

// BusStatus reports the event bus health for readiness probes.
type BusStatus interface {
	Backend() string
	BreakerState() string
}

// Handler holds the dependencies of every HTTP handler.
type Handler struct {
	recorder *recorder.Recorder
	monitors Monitors
	queue    EventQueue
	bus      BusStatus
	wsHub    *ws.Hub
	config   *config.Config

	startTime time.Time
	// reports of ended sessions; EndSession invalidates
	reports *cache.LRU[string, *recorder.Report]

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// NewHandler wires the handlers. queue, bus and hub may be nil; the
// corresponding features then degrade rather than fail.
func NewHandler(rec *recorder.Recorder, monitors Monitors, queue EventQueue, bus BusStatus, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		recorder:  rec,
		monitors:  monitors,
		queue:     queue,
		bus:       bus,
		wsHub:     hub,
		config:    cfg,
		startTime: time.Now(),
		reports:   cache.NewLRU[string, *recorder.Report](reportCacheSize, reportCacheTTL),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// ingestLimiter returns the observation rate limiter of a session. Call it
// only for sessions with a running monitor.
func (h *Handler) ingestLimiter(sessionID string) *rate.Limiter {
	h.limiterMu.Lock()
	defer h.limiterMu.Unlock()
	l, ok := h.limiters[sessionID]
	if !ok {
		limit, burst := rate.Inf, 0
		if h.config != nil && h.config.Monitor.IngestRate > 0 {
			limit = rate.Limit(h.config.Monitor.IngestRate)
			burst = h.config.Monitor.IngestBurst
			if burst < 1 {
				burst = 1
			}
		}
		l = rate.NewLimiter(limit, burst)
		h.limiters[sessionID] = l
	}
	return l
}

func (h *Handler) forgetLimiter(sessionID string) {
	h.limiterMu.Lock()
	delete(h.limiters, sessionID)
	h.limiterMu.Unlock()
}

// ReleaseSession drops per-session handler state. The server registers it
// as a monitor reap hook so sessions that were never ended are cleaned up.
func (h *Handler) ReleaseSession(sessionID string) {
	h.forgetLimiter(sessionID)
}

func (h *Handler) broadcast(messageType, sessionID string, data interface{}) {
	if h.wsHub == nil {
		return
	}
	if !h.wsHub.BroadcastJSON(messageType, sessionID, data) {
		logging.Warn().Str("type", messageType).Str("session_id", sessionID).Msg("WebSocket broadcast dropped")
	}
}

func (h *Handler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts browser origins listed in the CORS
// configuration. Non-browser clients without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	if h.config == nil {
		return true
	}
	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
