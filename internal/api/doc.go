// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package api serves the read side of the fleet store over HTTP and lets
// operators trigger ingestion cycles.
//
// Routes (all JSON, wrapped in models.APIResponse):
//
//	GET  /api/v1/health, /health/live, /health/ready
//	GET  /api/v1/devices, /api/v1/devices/{deviceID}
//	GET  /api/v1/events
//	POST /api/v1/events/{eventUUID}/ack
//	GET  /api/v1/alerts
//	GET  /api/v1/alerts/stream (websocket)
//	GET  /api/v1/financial-summary
//	GET  /api/v1/sync/logs, /api/v1/sync/status
//	POST /api/v1/sync/run, /api/v1/sync/window
//	GET  /metrics
//
// The API never writes ingested data. Its only write is event
// acknowledgement, and manual cycles go through the sync Scheduler so they
// are serialized with periodic ones.
//
// The alert stream pushes each committed cycle's new alerts; see package
// websocket for the frame format.
//
// List responses are cached for server.cache_ttl. The cache is cleared after
// every committed cycle and after an acknowledgement.
package api
