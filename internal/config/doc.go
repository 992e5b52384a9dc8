// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package config loads Fleetwatch configuration.
//
// Values are layered with koanf, lowest priority first:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/fleetwatch/config.yaml
//  3. Environment variables, including those from an optional .env file
//
// Only environment variables listed in envMappings are read. The telemetry
// variables follow the upstream provider naming:
//
//	TELEMETRY_API_URL        base URL; devices default to <base>/devices
//	TELEMETRY_EVENTS_URL     full URL of the events report endpoint
//	TELEMETRY_DEVICES_URL    full URL of the devices endpoint
//	TELEMETRY_API_KEY        shared x-api-key
//	TELEMETRY_ACCOUNT_ID     account synced by the scheduler
//
// Durations accept Go syntax (15m, 30s).
package config
