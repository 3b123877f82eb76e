// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateWAL(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	return c.validateWebhook()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "off", "disabled", "":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
		return nil
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "duckdb":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the duckdb driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be duckdb, postgres or memory, got %q", c.Database.Driver)
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads cannot be negative")
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.NoFaceThreshold <= 0 || d.LookingAwayThreshold <= 0 {
		return fmt.Errorf("detection thresholds must be positive")
	}
	if d.NoFaceRepeatInterval < 0 || d.LookingAwayRepeatInterval < 0 || d.MultipleFacesInterval < 0 {
		return fmt.Errorf("detection repeat intervals cannot be negative")
	}
	if d.GazeMargin <= 0 || d.GazeMargin >= 0.5 {
		return fmt.Errorf("detection.gaze_margin must be in (0, 0.5), got %v", d.GazeMargin)
	}
	if d.ObjectScanInterval <= 0 {
		return fmt.Errorf("detection.object_scan_interval must be positive")
	}
	if d.ObjectEviction < d.ObjectCooldown {
		return fmt.Errorf("detection.object_eviction (%s) must not be shorter than detection.object_cooldown (%s)",
			d.ObjectEviction, d.ObjectCooldown)
	}
	if d.ObjectMinConfidence < 0 || d.ObjectMinConfidence > 1 {
		return fmt.Errorf("detection.object_min_confidence must be within [0, 1]")
	}
	b := d.BookFilter
	if b.Enabled && b.MinAspectRatio > b.MaxAspectRatio {
		return fmt.Errorf("detection.book_filter aspect ratio range is empty")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.FrameInterval <= 0 {
		return fmt.Errorf("monitor.frame_interval must be positive")
	}
	if c.Monitor.IngestRate <= 0 || c.Monitor.IngestBurst < 1 {
		return fmt.Errorf("monitor.ingest_rate and monitor.ingest_burst must be positive")
	}
	if c.Monitor.MaxSessions < 1 {
		return fmt.Errorf("monitor.max_sessions must be at least 1")
	}
	return nil
}

func (c *Config) validateQueue() error {
	q := c.Queue
	if q.BufferSize < 1 || q.Workers < 1 {
		return fmt.Errorf("queue.buffer_size and queue.workers must be at least 1")
	}
	if q.MaxAttempts < 1 {
		return fmt.Errorf("queue.max_attempts must be at least 1")
	}
	if q.BaseBackoff <= 0 || q.MaxBackoff < q.BaseBackoff {
		return fmt.Errorf("queue backoff must satisfy 0 < base_backoff <= max_backoff")
	}
	if q.BreakerThreshold == 0 {
		return fmt.Errorf("queue.breaker_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateWAL() error {
	if c.WAL.Enabled && c.WAL.Path == "" {
		return fmt.Errorf("wal.path is required when the WAL is enabled")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.Topic == "" {
		return fmt.Errorf("nats.topic is required when NATS is enabled")
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("nats.store_dir is required for the embedded server")
		}
		return nil
	}
	if _, err := url.Parse(c.NATS.URL); err != nil || c.NATS.URL == "" {
		return fmt.Errorf("nats.url is invalid: %q", c.NATS.URL)
	}
	return nil
}

func (c *Config) validateWebhook() error {
	if !c.Webhook.Enabled {
		return nil
	}
	u, err := url.Parse(c.Webhook.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("webhook.url must be an absolute http(s) URL, got %q", c.Webhook.URL)
	}
	return nil
}
