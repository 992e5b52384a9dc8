// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fleetwatch/config.yaml",
	"/etc/fleetwatch/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Telemetry: TelemetryConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             2,
			DeviceRowLimit:    1000,
			CircuitBreaker:    true,
		},
		Database: DatabaseConfig{
			Driver:             DriverDuckDB,
			Path:               "/data/fleetwatch.duckdb",
			MaxMemory:          "1GB",
			CheckpointInterval: 5 * time.Minute,
			MaxOpenConns:       20,
			MaxIdleConns:       10,
			ConnMaxLifetime:    time.Hour,
		},
		Sync: SyncConfig{
			Enabled:       true,
			Interval:      15 * time.Minute,
			RunOnStart:    false,
			RetryAttempts: 3,
			RetryDelay:    30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
			CacheTTL:        30 * time.Second,
		},
		Alerts: AlertsConfig{
			Driver:        AlertsNone,
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "fleetwatch.alerts",
			AMQPQueue:     "fleetwatch.alerts",
		},
		Analytics: AnalyticsConfig{
			Enabled:  false,
			Addrs:    []string{"127.0.0.1:9000"},
			Database: "default",
			Username: "default",
			Table:    "device_events_fact",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional config file, a .env
// file, and the environment, then validates the result.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TELEMETRY_API_URL -> telemetry.base_url
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
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as env strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"analytics.addrs",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	"telemetry_api_url":             "telemetry.base_url",
	"telemetry_events_url":          "telemetry.events_url",
	"telemetry_devices_url":         "telemetry.devices_url",
	"telemetry_api_key":             "telemetry.api_key",
	"telemetry_events_api_key":      "telemetry.events_api_key",
	"telemetry_devices_api_key":     "telemetry.devices_api_key",
	"telemetry_account_id":          "telemetry.account_id",
	"telemetry_timeout":             "telemetry.timeout",
	"telemetry_requests_per_second": "telemetry.requests_per_second",
	"telemetry_burst":               "telemetry.burst",
	"telemetry_device_row_limit":    "telemetry.device_row_limit",
	"telemetry_circuit_breaker":     "telemetry.circuit_breaker",

	"db_driver":                  "database.driver",
	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"duckdb_checkpoint_interval": "database.checkpoint_interval",
	"database_url":               "database.dsn",
	"db_max_open_conns":          "database.max_open_conns",
	"db_max_idle_conns":          "database.max_idle_conns",
	"db_conn_max_lifetime":       "database.conn_max_lifetime",

	"sync_enabled":        "sync.enabled",
	"sync_interval":       "sync.interval",
	"sync_run_on_start":   "sync.run_on_start",
	"sync_retry_attempts": "sync.retry_attempts",
	"sync_retry_delay":    "sync.retry_delay",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"api_key":               "server.api_key",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"api_cache_ttl":         "server.cache_ttl",

	"alerts_driver":         "alerts.driver",
	"alerts_nats_url":       "alerts.nats_url",
	"alerts_subject_prefix": "alerts.subject_prefix",
	"alerts_amqp_url":       "alerts.amqp_url",
	"alerts_amqp_queue":     "alerts.amqp_queue",

	"clickhouse_enabled":  "analytics.enabled",
	"clickhouse_addrs":    "analytics.addrs",
	"clickhouse_database": "analytics.database",
	"clickhouse_username": "analytics.username",
	"clickhouse_password": "analytics.password",
	"clickhouse_table":    "analytics.table",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unknown variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
