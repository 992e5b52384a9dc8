// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package testinfra provides shared test infrastructure.
//
// # Mock telemetry API
//
// MockTelemetryServer is an httptest server that answers the events and
// devices endpoints with configurable bodies and records every request. It
// has no build tag and is used by unit tests that drive the real
// telemetry client:
//
//	srv := testinfra.NewMockTelemetryServer(t)
//	srv.SetEvents(`[{"serial":"SN1","row_id":42,"entry":"Main Door Open"}]`)
//	client := telemetry.NewClient(&config.TelemetryConfig{BaseURL: srv.URL(), APIKey: srv.APIKey})
//
// # Containers
//
// Files with the integration build tag start real services through
// testcontainers-go:
//
//   - PostgresContainer for the PostgreSQL store backend
//   - ClickHouseContainer for the analytics mirror
//   - RabbitMQContainer for the AMQP alert publisher
//
// Run them with:
//
//	go test -tags integration ./...
//
// Tests call SkipIfNoDocker first so they skip cleanly where Docker is not
// available.
package testinfra
