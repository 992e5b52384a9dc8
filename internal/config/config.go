// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Database  DatabaseConfig  `koanf:"database"`
	Sync      SyncConfig      `koanf:"sync"`
	Server    ServerConfig    `koanf:"server"`
	Alerts    AlertsConfig    `koanf:"alerts"`    // Optional: publish new alerts to NATS or RabbitMQ
	Analytics AnalyticsConfig `koanf:"analytics"` // Optional: mirror events into ClickHouse
	Logging   LoggingConfig   `koanf:"logging"`
}

// TelemetryConfig configures the upstream device telemetry API.
type TelemetryConfig struct {
	BaseURL       string `koanf:"base_url"`
	EventsURL     string `koanf:"events_url"`
	DevicesURL    string `koanf:"devices_url"`
	APIKey        string `koanf:"api_key"`
	EventsAPIKey  string `koanf:"events_api_key"`
	DevicesAPIKey string `koanf:"devices_api_key"`
	AccountID     string `koanf:"account_id"`

	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"` // 0 disables pacing
	Burst             int           `koanf:"burst"`
	DeviceRowLimit    int           `koanf:"device_row_limit"`
	CircuitBreaker    bool          `koanf:"circuit_breaker"`
}

// EventsEndpoint returns the events report URL.
func (t *TelemetryConfig) EventsEndpoint() string {
	if t.EventsURL != "" {
		return t.EventsURL
	}
	if t.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(t.BaseURL, "/") + "/events"
}

// DevicesEndpoint returns the devices URL, defaulting to <base>/devices.
func (t *TelemetryConfig) DevicesEndpoint() string {
	if t.DevicesURL != "" {
		return t.DevicesURL
	}
	if t.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(t.BaseURL, "/") + "/devices"
}

// EventsKey returns the events key, falling back to the shared key.
func (t *TelemetryConfig) EventsKey() string {
	if t.EventsAPIKey != "" {
		return t.EventsAPIKey
	}
	return t.APIKey
}

// DevicesKey returns the devices key, falling back to the shared key.
func (t *TelemetryConfig) DevicesKey() string {
	if t.DevicesAPIKey != "" {
		return t.DevicesAPIKey
	}
	return t.APIKey
}

// Database drivers.
const (
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects and tunes the relational store.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`

	// DuckDB
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// CheckpointInterval is how often DuckDB's WAL is folded into the
	// database file while running. Zero leaves it to shutdown.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`

	// PostgreSQL
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// SyncConfig controls the periodic ingestion scheduler.
type SyncConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Interval      time.Duration `koanf:"interval"`
	RunOnStart    bool          `koanf:"run_on_start"`
	RetryAttempts int           `koanf:"retry_attempts"` // periodic cycles only
	RetryDelay    time.Duration `koanf:"retry_delay"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// APIKey, when set, must be sent as X-API-Key on every /api/v1 route
	// except health.
	APIKey string `koanf:"api_key"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// CacheTTL bounds how long read responses are cached. Zero disables the
	// cache. Every committed sync cycle clears it.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// Alert publisher drivers.
const (
	AlertsNone = ""
	AlertsNATS = "nats"
	AlertsAMQP = "amqp"
)

// AlertsConfig selects where newly raised alerts are published.
type AlertsConfig struct {
	Driver        string `koanf:"driver"`
	NATSURL       string `koanf:"nats_url"`
	SubjectPrefix string `koanf:"subject_prefix"`
	AMQPURL       string `koanf:"amqp_url"`
	AMQPQueue     string `koanf:"amqp_queue"`
}

// AnalyticsConfig configures the ClickHouse event mirror.
type AnalyticsConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Addrs    []string `koanf:"addrs"`
	Database string   `koanf:"database"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	Table    string   `koanf:"table"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
