// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package ingest runs one telemetry sync cycle end to end.

A cycle fetches the device snapshot and the event batch concurrently, then
applies both inside a single store transaction:

 1. every device with a serial is merged into the devices table, creating
    its company on first sight
 2. every event is classified, its company and catalog entry ensured, the
    device touched with the event's last_event_time, and the event stored
    by row id (duplicates are skipped)
 3. newly stored financial events feed the per-day financial summary
 4. newly stored critical door and cash box events raise an active alert

Any store error rolls the whole cycle back. Both outcomes are written to
api_sync_logs. After a successful commit the new events and alerts are
handed to the configured Sinks; sink failures are logged and counted but
never fail the cycle.

Events without a numeric row id or a serial cannot be keyed and are counted
as rejected instead of aborting the cycle.

The Orchestrator performs no retries and no locking of its own. Callers that
may trigger cycles concurrently serialize them (see internal/sync).
*/
package ingest
