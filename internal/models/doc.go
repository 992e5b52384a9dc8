// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package models defines the data structures shared across Fleetwatch.

Raw telemetry (RawEvent, RawDevice) is decoded leniently: every field is a
FlexString, so the upstream API may send strings, numbers, booleans, or null
without breaking a sync. The classifier turns a RawEvent into a ParsedEvent,
and the database package persists ParsedEvents and Devices and reads them back
as StoredEvent, Device, ActiveAlert, FinancialSummary, and SyncLog rows.

APIResponse is the envelope written by every HTTP handler.
*/
package models
