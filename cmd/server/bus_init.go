// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package main

import (
	"time"

	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/eventbus"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/notify"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

// openBus selects NATS JetStream when enabled and the in-process GoChannel
// otherwise.
func openBus(cfg config.NATSConfig) (*eventbus.Bus, error) {
	if !cfg.Enabled {
		logging.Info().Str("topic", cfg.Topic).Msg("Event bus running in-process")
		return eventbus.NewInProcess(cfg.Topic), nil
	}
	b, err := eventbus.New(cfg)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Str("url", cfg.URL).
		Bool("embedded", cfg.EmbeddedServer).
		Str("topic", cfg.Topic).
		Msg("Event bus connected to NATS JetStream")
	return b, nil
}

// Redeliveries older than this are rare enough to let through.
const dedupeWindow = 10 * time.Minute

// busConsumers builds one consumer per anomaly subscriber.
func busConsumers(b *eventbus.Bus, hub *ws.Hub, hook config.WebhookConfig) []*eventbus.Consumer {
	consumers := []*eventbus.Consumer{
		b.Consumer("websocket", notify.Once(notify.NewWebSocketBridge(hub).Handle, 0, dedupeWindow)),
	}
	if hook.Enabled {
		h := notify.Once(notify.NewWebhookNotifier(hook).Handle, 0, dedupeWindow)
		consumers = append(consumers, b.Consumer("webhook", h))
		logging.Info().Str("url", hook.URL).Strs("types", hook.Types).Msg("Webhook notifications enabled")
	}
	return consumers
}
