// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/fleetwatch/internal/logging"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateTelemetry(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAlerts(); err != nil {
		return err
	}
	if err := c.validateAnalytics(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTelemetry() error {
	t := &c.Telemetry
	if t.EventsEndpoint() == "" {
		return fmt.Errorf("TELEMETRY_EVENTS_URL or TELEMETRY_API_URL is required")
	}
	if err := validateHTTPURL(t.EventsEndpoint(), "TELEMETRY_EVENTS_URL"); err != nil {
		return err
	}
	if t.DevicesEndpoint() == "" {
		return fmt.Errorf("TELEMETRY_DEVICES_URL or TELEMETRY_API_URL is required")
	}
	if err := validateHTTPURL(t.DevicesEndpoint(), "TELEMETRY_DEVICES_URL"); err != nil {
		return err
	}
	if t.Timeout <= 0 {
		return fmt.Errorf("TELEMETRY_TIMEOUT must be positive, got %v", t.Timeout)
	}
	if t.RequestsPerSecond < 0 {
		return fmt.Errorf("TELEMETRY_REQUESTS_PER_SECOND must not be negative, got %v", t.RequestsPerSecond)
	}
	if t.DeviceRowLimit < 0 {
		return fmt.Errorf("TELEMETRY_DEVICE_ROW_LIMIT must not be negative, got %d", t.DeviceRowLimit)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DB_DRIVER=duckdb")
		}
		if c.Database.CheckpointInterval < 0 {
			return fmt.Errorf("DUCKDB_CHECKPOINT_INTERVAL must not be negative, got %v", c.Database.CheckpointInterval)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverDuckDB, DriverPostgres, c.Database.Driver)
	}
	return nil
}

func (c *Config) validateSync() error {
	if !c.Sync.Enabled {
		return nil
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("SYNC_INTERVAL must be positive, got %v", c.Sync.Interval)
	}
	if c.Sync.RetryAttempts < 1 {
		return fmt.Errorf("SYNC_RETRY_ATTEMPTS must be at least 1, got %d", c.Sync.RetryAttempts)
	}
	if c.Sync.RetryDelay < 0 {
		return fmt.Errorf("SYNC_RETRY_DELAY must not be negative, got %v", c.Sync.RetryDelay)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !c.Server.RateLimitDisabled && c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("API_CACHE_TTL must not be negative, got %v", c.Server.CacheTTL)
	}
	return nil
}

func (c *Config) validateAlerts() error {
	switch c.Alerts.Driver {
	case AlertsNone:
		return nil
	case AlertsNATS:
		return validateBrokerURL(c.Alerts.NATSURL, "ALERTS_NATS_URL", "nats", "tls", "ws", "wss")
	case AlertsAMQP:
		if c.Alerts.AMQPQueue == "" {
			return fmt.Errorf("ALERTS_AMQP_QUEUE is required when ALERTS_DRIVER=amqp")
		}
		return validateBrokerURL(c.Alerts.AMQPURL, "ALERTS_AMQP_URL", "amqp", "amqps")
	default:
		return fmt.Errorf("ALERTS_DRIVER must be empty, %q or %q, got %q", AlertsNATS, AlertsAMQP, c.Alerts.Driver)
	}
}

func (c *Config) validateAnalytics() error {
	if !c.Analytics.Enabled {
		return nil
	}
	if len(c.Analytics.Addrs) == 0 {
		return fmt.Errorf("CLICKHOUSE_ADDRS is required when CLICKHOUSE_ENABLED=true")
	}
	if c.Analytics.Table == "" {
		return fmt.Errorf("CLICKHOUSE_TABLE must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
