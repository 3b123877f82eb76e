// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"memory driver", func(c *Config) { c.Database.Driver = "memory"; c.Database.Path = "" }, false},
		{"zero threshold", func(c *Config) { c.Detection.NoFaceThreshold = 0 }, true},
		{"gaze margin too wide", func(c *Config) { c.Detection.GazeMargin = 0.5 }, true},
		{"eviction shorter than cooldown", func(c *Config) { c.Detection.ObjectEviction = time.Second }, true},
		{"inverted book aspect", func(c *Config) { c.Detection.BookFilter.MinAspectRatio = 3 }, true},
		{"zero frame interval", func(c *Config) { c.Monitor.FrameInterval = 0 }, true},
		{"backoff inverted", func(c *Config) { c.Queue.MaxBackoff = time.Millisecond }, true},
		{"wal without path", func(c *Config) { c.WAL.Enabled = true; c.WAL.Path = "" }, true},
		{"nats external bad url", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.EmbeddedServer = false
			c.NATS.URL = ""
		}, true},
		{"webhook relative url", func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "/hook"
		}, true},
		{"webhook ok", func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "https://hooks.example.com/proctor"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", got)
	}
}
