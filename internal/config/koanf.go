// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/focusguard/config.yaml",
	"/etc/focusguard/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration: defaults, then the config file (if any),
// then environment variables. The result is validated.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips the
// file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"detection.suspicious_objects",
	"detection.ignored_objects",
	"webhook.types",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config keys.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":               "server.host",
	"http_port":               "server.port",
	"port":                    "server.port",
	"http_timeout":            "server.timeout",
	"shutdown_timeout":        "server.shutdown_timeout",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
	"database_driver":         "database.driver",
	"duckdb_path":             "database.path",
	"duckdb_max_memory":       "database.max_memory",
	"duckdb_threads":          "database.threads",
	"database_url":            "database.dsn",
	"database_query_timeout":  "database.query_timeout",
	"no_face_threshold":       "detection.no_face_threshold",
	"no_face_repeat_interval": "detection.no_face_repeat_interval",
	"looking_away_threshold":  "detection.looking_away_threshold",
	"looking_away_repeat":     "detection.looking_away_repeat_interval",
	"multiple_faces_interval": "detection.multiple_faces_interval",
	"gaze_margin":             "detection.gaze_margin",
	"object_scan_interval":    "detection.object_scan_interval",
	"object_cooldown":         "detection.object_cooldown",
	"object_eviction":         "detection.object_eviction",
	"object_min_confidence":   "detection.object_min_confidence",
	"suspicious_objects":      "detection.suspicious_objects",
	"ignored_objects":         "detection.ignored_objects",
	"book_filter_enabled":     "detection.book_filter.enabled",
	"frame_interval":          "monitor.frame_interval",
	"ingest_rate":             "monitor.ingest_rate",
	"ingest_burst":            "monitor.ingest_burst",
	"monitor_retention":       "monitor.retention",
	"monitor_max_sessions":    "monitor.max_sessions",
	"queue_buffer_size":       "queue.buffer_size",
	"queue_workers":           "queue.workers",
	"queue_max_attempts":      "queue.max_attempts",
	"queue_base_backoff":      "queue.base_backoff",
	"queue_max_backoff":       "queue.max_backoff",
	"queue_delivery_timeout":  "queue.delivery_timeout",
	"queue_flush_timeout":     "queue.flush_timeout",
	"queue_breaker_threshold": "queue.breaker_threshold",
	"queue_breaker_timeout":   "queue.breaker_timeout",
	"wal_enabled":             "wal.enabled",
	"wal_path":                "wal.path",
	"wal_sync_writes":         "wal.sync_writes",
	"wal_entry_ttl":           "wal.entry_ttl",
	"wal_gc_interval":         "wal.gc_interval",
	"nats_enabled":            "nats.enabled",
	"nats_url":                "nats.url",
	"nats_embedded":           "nats.embedded_server",
	"nats_host":               "nats.host",
	"nats_port":               "nats.port",
	"nats_store_dir":          "nats.store_dir",
	"nats_topic":              "nats.topic",
	"nats_queue_group":        "nats.queue_group",
	"webhook_enabled":         "webhook.enabled",
	"webhook_url":             "webhook.url",
	"webhook_timeout":         "webhook.timeout",
	"webhook_min_interval":    "webhook.min_interval",
	"webhook_types":           "webhook.types",
	"cors_origins":            "security.cors_origins",
	"rate_limit_reqs":         "security.rate_limit_reqs",
	"rate_limit_window":       "security.rate_limit_window",
	"disable_rate_limit":      "security.rate_limit_disabled",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
