// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. Acknowledgement columns on
// device_events are added by migration 1.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", q, err)
		}
	}
	return nil
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		company_id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS event_types (
		event_type VARCHAR NOT NULL,
		event_id VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		PRIMARY KEY (event_type, event_id)
	)`,

	`CREATE TABLE IF NOT EXISTS devices (
		device_id VARCHAR PRIMARY KEY,
		imei VARCHAR,
		serial_number VARCHAR NOT NULL,
		company_id VARCHAR,
		account_id VARCHAR,
		nickname VARCHAR,
		last_known_lat FLOAT8,
		last_known_lng FLOAT8,
		last_event_time TIMESTAMPTZ,
		vehicle_stock VARCHAR,
		event_satellites FLOAT8,
		event_rssi BIGINT,
		event_voltage FLOAT8,
		activation_date VARCHAR,
		delivery_date VARCHAR,
		group_name VARCHAR,
		full_address VARCHAR,
		country VARCHAR,
		admin1 VARCHAR,
		admin2 VARCHAR,
		admin3 VARCHAR,
		city VARCHAR,
		route VARCHAR,
		street_number VARCHAR,
		postal_code VARCHAR,
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS device_events (
		event_uuid VARCHAR PRIMARY KEY,
		row_id BIGINT NOT NULL UNIQUE,
		device_id VARCHAR NOT NULL,
		imei VARCHAR,
		serial_number VARCHAR,
		company_id VARCHAR NOT NULL,
		account_id VARCHAR,
		event_type VARCHAR,
		event_id VARCHAR,
		event_entry VARCHAR,
		parsed_amount FLOAT8,
		parsed_status VARCHAR,
		is_door_event BOOLEAN NOT NULL DEFAULT false,
		is_financial_event BOOLEAN NOT NULL DEFAULT false,
		is_cash_box_event BOOLEAN NOT NULL DEFAULT false,
		event_timestamp TIMESTAMPTZ,
		report_timestamp TIMESTAMPTZ,
		severity VARCHAR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS financial_summary (
		device_id VARCHAR NOT NULL,
		company_id VARCHAR NOT NULL,
		summary_date DATE NOT NULL,
		total_cash_in FLOAT8 NOT NULL DEFAULT 0,
		transaction_count BIGINT NOT NULL DEFAULT 0,
		last_transaction_time TIMESTAMPTZ,
		PRIMARY KEY (device_id, summary_date)
	)`,

	`CREATE TABLE IF NOT EXISTS active_alerts (
		event_uuid VARCHAR PRIMARY KEY,
		device_id VARCHAR NOT NULL,
		alert_type VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS api_sync_logs (
		sync_id VARCHAR PRIMARY KEY,
		sync_type VARCHAR NOT NULL,
		account_id VARCHAR,
		rows_fetched BIGINT NOT NULL DEFAULT 0,
		status VARCHAR NOT NULL,
		error_message VARCHAR,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Columns rewritten by ON CONFLICT DO UPDATE are never indexed; DuckDB
// rejects upserts that touch indexed columns.
var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_device_events_device ON device_events(device_id)`,
	`CREATE INDEX IF NOT EXISTS idx_device_events_company ON device_events(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_device_events_timestamp ON device_events(event_timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_active_alerts_device ON active_alerts(device_id)`,
	`CREATE INDEX IF NOT EXISTS idx_api_sync_logs_created ON api_sync_logs(created_at)`,
}
