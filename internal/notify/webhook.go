// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/eventbus"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/metrics"
)

const (
	webhookEventType = "proctoring_anomaly"
	webhookSource    = "focusguard"
)

// WebhookPayload is the JSON body POSTed for each anomaly.
type WebhookPayload struct {
	EventType string                  `json:"event_type"`
	Source    string                  `json:"source"`
	Timestamp time.Time               `json:"timestamp"`
	Anomaly   eventbus.AnomalyMessage `json:"anomaly"`
}

// WebhookNotifier POSTs anomalies of selected types to a URL.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	types   map[string]bool
	client  *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// NewWebhookNotifier builds a notifier from the webhook config section.
// An empty type list forwards every event type.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	var types map[string]bool
	if len(cfg.Types) > 0 {
		types = make(map[string]bool, len(cfg.Types))
		for _, t := range cfg.Types {
			types[t] = true
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &WebhookNotifier{
		url:     cfg.URL,
		headers: headers,
		types:   types,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
	}
}

// Wants reports whether anomalies of type t are forwarded.
func (n *WebhookNotifier) Wants(t string) bool {
	return n.types == nil || n.types[t]
}

// Handle delivers a. A non-2xx response is an error so the bus redelivers.
func (n *WebhookNotifier) Handle(ctx context.Context, a eventbus.AnomalyMessage) error {
	if !n.Wants(string(a.Type)) {
		return nil
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limiter: %w", err)
	}

	err := n.send(ctx, a)
	metrics.WebhookDeliveries.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logging.Warn().Err(err).Str("session_id", a.SessionID).Str("anomaly_id", a.ID).Msg("Webhook delivery failed")
	}
	return err
}

func (n *WebhookNotifier) send(ctx context.Context, a eventbus.AnomalyMessage) error {
	body, err := json.Marshal(WebhookPayload{
		EventType: webhookEventType,
		Source:    webhookSource,
		Timestamp: n.now().UTC(),
		Anomaly:   a,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
