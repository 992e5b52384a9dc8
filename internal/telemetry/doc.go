// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package telemetry is the HTTP client for the upstream device telemetry API.

Client issues two authenticated GET requests:

  - FetchEvents: the events report for an account and time window
    (accountId, startDate, endDate query parameters)
  - FetchDevices: the device inventory for an account (accountId, rowLimit)

Both send the static key in the x-api-key header and return raw, unvalidated
records. A response body that is not a JSON array yields an empty result.
Non-2xx responses return a *StatusError that matches ErrUnexpectedStatus.

The client never retries. Retrying is the scheduler's decision. Outbound
requests are paced by a token bucket (golang.org/x/time/rate) and bounded by
the http.Client timeout.

CircuitBreakerClient wraps a Client with sony/gobreaker so a failing upstream
is rejected quickly instead of holding a sync cycle open until the timeout.
*/
package telemetry
