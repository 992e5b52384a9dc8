// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package services adapts fleetwatch components to suture.Service so the
// supervisor tree can start, restart and stop them.
//
//   - SchedulerService: the periodic sync scheduler (messaging layer)
//   - HTTPServerService: the REST API server (api layer)
//   - CheckpointService: periodic DuckDB checkpoints (data layer)
//
// The alert stream hub in internal/websocket implements suture.Service itself
// and is added to the messaging layer directly.
package services
