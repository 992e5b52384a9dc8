// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package supervisor runs the long-lived parts of fleetwatch under a suture
supervisor tree.

The tree has three layers, each its own supervisor so that a crash loop in
one does not take the others down:

	fleetwatch
	├── data-layer       DuckDB checkpointing
	├── messaging-layer  sync scheduler, alert stream hub
	└── api-layer        HTTP server

Lifecycle events are logged through sutureslog on top of the zerolog-backed
slog logger from internal/logging. The service adapters live in
internal/supervisor/services.
*/
package supervisor
