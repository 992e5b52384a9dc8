// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package websocket streams newly raised alerts to operators over a websocket.

The Hub is registered twice at startup: as a post-commit ingest.Sink, so
every committed cycle's alerts reach it, and as a supervised service whose
Serve loop owns the client set.

	orchestrator ──Publish──▶ Hub ──▶ Client ──▶ GET /api/v1/alerts/stream
	                           │
	                           ├──▶ Client
	                           └──▶ Client

Each Client runs two goroutines. readPump answers {"type":"ping"} with a
pong and detects disconnects; writePump is the only writer and sends
protocol pings every pingPeriod.

Frames are JSON objects with a type and a data field:

	alert           one models.AlertNotification
	sync_completed  SyncCompletedData for the cycle, after its alerts
	pong            reply to a client ping

Delivery is best effort. Publish never blocks the ingestion cycle: when the
hub queue is full the remaining messages are dropped, and a client whose own
queue is full is disconnected.
*/
package websocket
