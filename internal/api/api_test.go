// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/eventqueue"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

func init() {
	logging.SetLogger(logging.NewTestLogger(io.Discard))
}

type testAPI struct {
	server  *httptest.Server
	handler *Handler
	store   *recorder.MemoryStore
	rec     *recorder.Recorder
	queue   *eventqueue.Queue
	mgr     *monitor.Manager
	hub     *ws.Hub
}

func testConfig() *config.Config {
	return &config.Config{
		Monitor: config.MonitorConfig{
			FrameInterval: 5 * time.Millisecond,
			Retention:     time.Minute,
			MaxSessions:   4,
		},
		Queue: config.QueueConfig{FlushTimeout: 2 * time.Second},
		Security: config.SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
	}
}

func newTestAPI(t *testing.T, cfg *config.Config) *testAPI {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	store := recorder.NewMemoryStore()
	rec := recorder.New(store)
	q := eventqueue.New(eventqueue.Config{
		BufferSize:      64,
		Workers:         1,
		MaxAttempts:     3,
		BaseBackoff:     time.Millisecond,
		MaxBackoff:      10 * time.Millisecond,
		DeliveryTimeout: time.Second,
	}, rec, nil)
	mgr := monitor.NewManager(cfg.Monitor, detection.DefaultConfig(), monitor.NewFanoutSink(q, nil))
	hub := ws.NewHub()

	done := make(chan struct{}, 3)
	for _, serve := range []func(context.Context) error{q.Serve, mgr.Serve, hub.Serve} {
		serve := serve
		go func() {
			_ = serve(ctx)
			done <- struct{}{}
		}()
	}

	h := NewHandler(rec, mgr, q, nil, hub, cfg)
	mgr.OnReap(h.ReleaseSession)
	router := NewRouter(h, NewChiMiddleware(MiddlewareConfigFrom(cfg.Security)))
	srv := httptest.NewServer(router.SetupChi())

	t.Cleanup(func() {
		srv.Close()
		cancel()
		for i := 0; i < 3; i++ {
			<-done
		}
	})
	return &testAPI{server: srv, handler: h, store: store, rec: rec, queue: q, mgr: mgr, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *testAPI) startSession(t *testing.T, name string) string {
	t.Helper()
	var resp StartSessionResponse
	if code := a.do(t, http.MethodPost, "/api/session/start", StartSessionRequest{CandidateName: name}, &resp); code != http.StatusCreated {
		t.Fatalf("start session status = %d", code)
	}
	if !resp.Success || !recorder.ValidID(resp.SessionID) {
		t.Fatalf("start session response = %+v", resp)
	}
	return resp.SessionID
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func twoFaces() []detection.FaceDetection {
	return []detection.FaceDetection{
		{Box: detection.Box{CenterX: 0.3, CenterY: 0.5, Width: 0.2, Height: 0.2}},
		{Box: detection.Box{CenterX: 0.7, CenterY: 0.5, Width: 0.2, Height: 0.2}},
	}
}
