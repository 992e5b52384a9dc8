// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package middleware provides the HTTP middleware mounted by the API router.

  - RequestID: reuses or generates X-Request-ID and puts it, with a fresh
    correlation id, into the logging context
  - PrometheusMetrics: request counts, durations and in-flight gauge, labeled
    by chi route pattern so path parameters do not explode cardinality
  - APIKey: optional static key check on X-API-Key

All three have the func(http.Handler) http.Handler shape used by chi:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.APIKey(cfg.Server.APIKey))
*/
package middleware
