// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package logging provides the process-wide zerolog logger for Fleetwatch.
//
// Call Init once from main with the values loaded by the config package:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("account", id).Msg("sync scheduled")
//
// Sync cycles and HTTP requests carry a correlation ID or request ID in their
// context. Use Ctx to get a logger that stamps those IDs onto every line:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("event rejected")
//
// Libraries that want a *slog.Logger (sutureslog) get one from NewSlogLogger,
// which writes through the same zerolog output.
//
// Environment variables read through the config package:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include file:line (default: false)
package logging
