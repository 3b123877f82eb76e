// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

// Package config loads FocusGuard configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Detection DetectionConfig `koanf:"detection"`
	Monitor   MonitorConfig   `koanf:"monitor"`
	Queue     QueueConfig     `koanf:"queue"`
	WAL       WALConfig       `koanf:"wal"`
	NATS      NATSConfig      `koanf:"nats"`
	Webhook   WebhookConfig   `koanf:"webhook"`
	Security  SecurityConfig  `koanf:"security"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig selects the session store.
//
// Driver is one of duckdb, postgres or memory. Path and MaxMemory/Threads
// apply to DuckDB, DSN to PostgreSQL.
type DatabaseConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	DSN          string        `koanf:"dsn"`
	MaxMemory    string        `koanf:"max_memory"`
	Threads      int           `koanf:"threads"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// DetectionConfig holds the anomaly detector thresholds.
type DetectionConfig struct {
	NoFaceThreshold           time.Duration `koanf:"no_face_threshold"`
	NoFaceRepeatInterval      time.Duration `koanf:"no_face_repeat_interval"`
	LookingAwayThreshold      time.Duration `koanf:"looking_away_threshold"`
	LookingAwayRepeatInterval time.Duration `koanf:"looking_away_repeat_interval"`
	MultipleFacesInterval     time.Duration `koanf:"multiple_faces_interval"`
	GazeMargin                float64       `koanf:"gaze_margin"`

	ObjectScanInterval  time.Duration `koanf:"object_scan_interval"`
	ObjectCooldown      time.Duration `koanf:"object_cooldown"`
	ObjectEviction      time.Duration `koanf:"object_eviction"`
	ObjectMinConfidence float64       `koanf:"object_min_confidence"`
	SuspiciousObjects   []string      `koanf:"suspicious_objects"`
	IgnoredObjects      []string      `koanf:"ignored_objects"`

	BookFilter BookFilterConfig `koanf:"book_filter"`
}

type BookFilterConfig struct {
	Enabled        bool    `koanf:"enabled"`
	MinAspectRatio float64 `koanf:"min_aspect_ratio"`
	MaxAspectRatio float64 `koanf:"max_aspect_ratio"`
	MinWidth       float64 `koanf:"min_width"`
	MinHeight      float64 `koanf:"min_height"`
	MinConfidence  float64 `koanf:"min_confidence"`
}

// MonitorConfig controls the per-session frame driver.
type MonitorConfig struct {
	FrameInterval time.Duration `koanf:"frame_interval"`
	IngestRate    float64       `koanf:"ingest_rate"`
	IngestBurst   int           `koanf:"ingest_burst"`
	Retention     time.Duration `koanf:"retention"`
	MaxSessions   int           `koanf:"max_sessions"`
}

// QueueConfig controls asynchronous delivery of detector events to the recorder.
type QueueConfig struct {
	BufferSize       int           `koanf:"buffer_size"`
	Workers          int           `koanf:"workers"`
	MaxAttempts      int           `koanf:"max_attempts"`
	BaseBackoff      time.Duration `koanf:"base_backoff"`
	MaxBackoff       time.Duration `koanf:"max_backoff"`
	DeliveryTimeout  time.Duration `koanf:"delivery_timeout"`
	FlushTimeout     time.Duration `koanf:"flush_timeout"`
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// WALConfig enables Badger-backed durability for queued events.
type WALConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	SyncWrites bool          `koanf:"sync_writes"`
	EntryTTL   time.Duration `koanf:"entry_ttl"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// NATSConfig selects the event bus transport. When disabled, anomalies are
// fanned out in-process.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	StoreDir       string        `koanf:"store_dir"`
	Topic          string        `koanf:"topic"`
	QueueGroup     string        `koanf:"queue_group"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	AckWait        time.Duration `koanf:"ack_wait"`
}

// WebhookConfig forwards anomalies to an external HTTP endpoint.
type WebhookConfig struct {
	Enabled     bool              `koanf:"enabled"`
	URL         string            `koanf:"url"`
	Headers     map[string]string `koanf:"headers"`
	Timeout     time.Duration     `koanf:"timeout"`
	MinInterval time.Duration     `koanf:"min_interval"`
	Types       []string          `koanf:"types"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// defaultConfig returns the stock proctoring thresholds:
// 10s no-face threshold, 5s looking-away threshold, objects every 2s.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Driver:       "duckdb",
			Path:         "/data/focusguard.duckdb",
			MaxMemory:    "512MB",
			QueryTimeout: 10 * time.Second,
		},
		Detection: DetectionConfig{
			NoFaceThreshold:           10 * time.Second,
			NoFaceRepeatInterval:      10 * time.Second,
			LookingAwayThreshold:      5 * time.Second,
			LookingAwayRepeatInterval: 5 * time.Second,
			MultipleFacesInterval:     5 * time.Second,
			GazeMargin:                0.2,
			ObjectScanInterval:        2 * time.Second,
			ObjectCooldown:            10 * time.Second,
			ObjectEviction:            15 * time.Second,
			ObjectMinConfidence:       0.6,
			SuspiciousObjects:         []string{"book", "notebook", "cell phone", "laptop", "mouse", "keyboard", "remote"},
			IgnoredObjects:            []string{"person"},
			BookFilter: BookFilterConfig{
				Enabled:        true,
				MinAspectRatio: 0.6,
				MaxAspectRatio: 1.8,
				MinWidth:       50,
				MinHeight:      30,
				MinConfidence:  0.65,
			},
		},
		Monitor: MonitorConfig{
			FrameInterval: 100 * time.Millisecond,
			IngestRate:    30,
			IngestBurst:   30,
			Retention:     15 * time.Minute,
			MaxSessions:   256,
		},
		Queue: QueueConfig{
			BufferSize:       1024,
			Workers:          2,
			MaxAttempts:      5,
			BaseBackoff:      200 * time.Millisecond,
			MaxBackoff:       5 * time.Second,
			DeliveryTimeout:  5 * time.Second,
			FlushTimeout:     3 * time.Second,
			BreakerThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		WAL: WALConfig{
			Enabled:    false,
			Path:       "/data/wal",
			SyncWrites: true,
			EntryTTL:   24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		NATS: NATSConfig{
			Enabled:        false,
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			Host:           "127.0.0.1",
			Port:           4222,
			StoreDir:       "/data/nats",
			Topic:          "focusguard-anomalies",
			QueueGroup:     "focusguard",
			MaxReconnects:  -1,
			ReconnectWait:  2 * time.Second,
			AckWait:        30 * time.Second,
		},
		Webhook: WebhookConfig{
			Enabled:     false,
			Timeout:     10 * time.Second,
			MinInterval: time.Second,
			Types:       []string{"alert", "warning"},
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
	}
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
