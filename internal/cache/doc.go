// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package cache provides the in-memory TTL cache behind the HTTP read
// endpoints.
//
// Entries expire after a fixed TTL and a background loop sweeps expired
// keys. The whole cache is cleared after every committed ingestion cycle
// through the Invalidator sink, so readers never see data older than the
// last cycle plus at most one TTL.
//
// Keys are built with GenerateKey from an endpoint name and its filter:
//
//	key := cache.GenerateKey("devices", filter)
//	if v, ok := c.Get(key); ok {
//	    return v.([]models.Device), nil
//	}
package cache
