// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package database is the relational store for devices, events and their
// derived aggregates.
//
// # Backends
//
// Two backends share one SQL dialect:
//   - DuckDB (default), embedded through github.com/duckdb/duckdb-go/v2,
//     either file-backed or ":memory:"
//   - PostgreSQL, opened through gorm.io/gorm with gorm.io/driver/postgres;
//     the store runs on gorm's *sql.DB
//
// Statements use numbered placeholders ($1), ON CONFLICT upserts, COALESCE
// and GREATEST, and only types both engines accept (VARCHAR, BIGINT, FLOAT8,
// BOOLEAN, DATE, TIMESTAMPTZ). Event UUIDs are generated in Go. There are no
// foreign keys.
//
// # Schema
//
//   - companies: owner rows, insert-if-absent
//   - event_types: (event_type, event_id) catalog, first classification wins
//   - devices: one row per serial, coalescing upserts, monotonic last_event_time
//   - device_events: one row per upstream row_id, insert-once
//   - financial_summary: per device and UTC day, additive upserts
//   - active_alerts: one row per event uuid, insert-once
//   - api_sync_logs: append-only cycle log
//
// Tables are created idempotently by New. Later changes are versioned
// migrations tracked in schema_migrations.
//
// # Writes
//
// All ingestion writes go through a CycleTx (BeginCycle) so a sync cycle
// commits or rolls back as a unit. InsertSyncLog runs outside the cycle
// transaction so failed cycles are still recorded. The only write available
// to the API is AcknowledgeEvent.
//
// # Testing
//
// Unit tests use ":memory:" DuckDB databases. The PostgreSQL backend is
// exercised by integration tests (build tag integration) against a
// testcontainers-managed server.
package database
