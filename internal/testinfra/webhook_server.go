// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// WebhookCapture represents a captured webhook request.
type WebhookCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// MockWebhookServer captures every request it receives.
type MockWebhookServer struct {
	Server   *httptest.Server
	captures []WebhookCapture
	mu       sync.Mutex

	// ResponseStatus is the HTTP status code to return (default: 200).
	ResponseStatus int
}

// NewMockWebhookServer starts a capturing server that is closed with the test.
func NewMockWebhookServer(t *testing.T) *MockWebhookServer {
	t.Helper()

	m := &MockWebhookServer{ResponseStatus: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()

		m.mu.Lock()
		m.captures = append(m.captures, WebhookCapture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		status := m.ResponseStatus
		m.mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(m.Server.Close)
	return m
}

// URL returns the server URL.
func (m *MockWebhookServer) URL() string {
	return m.Server.URL
}

// Captures returns a copy of all captured requests.
func (m *MockWebhookServer) Captures() []WebhookCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WebhookCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// WaitForCaptures waits until at least n requests are captured or timeout passes.
func (m *MockWebhookServer) WaitForCaptures(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		m.mu.Lock()
		count := len(m.captures)
		m.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
