// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Command fleetwatch ingests gaming-device telemetry into a relational store
and serves the result over a REST API.

Usage:

	fleetwatch [serve]
	fleetwatch window [account] [start] [end]

serve (the default) runs the periodic sync scheduler, the HTTP API, the
websocket alert stream and DuckDB checkpointing under a supervisor tree
until SIGINT or SIGTERM.

window runs one backfill cycle for [start, end) and exits. start and end
are RFC3339 timestamps or YYYY-MM-DD dates (midnight UTC); "-" or an
omitted argument leaves that bound open. An empty or "-" account uses
TELEMETRY_ACCOUNT_ID. The exit status is non-zero when the cycle fails.

# Configuration

Settings come from built-in defaults, an optional config.yaml (or the file
named by CONFIG_PATH), an optional .env file and the environment, in that
order. Commonly set:

	TELEMETRY_API_URL      base URL of the telemetry API
	TELEMETRY_API_KEY      API key sent with every request
	TELEMETRY_ACCOUNT_ID   account synced by the scheduler
	DB_DRIVER              duckdb (default) or postgres
	DUCKDB_PATH            DuckDB file, default /data/fleetwatch.duckdb
	DATABASE_URL           PostgreSQL DSN when DB_DRIVER=postgres
	SYNC_INTERVAL          periodic sync interval, default 15m
	HTTP_PORT              API port
	API_KEY                required X-API-Key for /api/v1 when set
	ALERTS_DRIVER          nats or amqp to publish new alerts
	CLICKHOUSE_ENABLED     mirror new events into ClickHouse

# Build

The version reported by /api/v1/health is set at link time:

	go build -ldflags "-X github.com/tomtom215/fleetwatch/internal/api.Version=1.0.0" ./cmd/server
*/
package main
