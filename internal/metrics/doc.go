// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package metrics registers the Prometheus collectors for Fleetwatch.

All collectors are created with promauto on the default registry and exposed
by the API router at /metrics.

# Sync

	fleetwatch_sync_duration_seconds{sync_type}
	fleetwatch_sync_events_total{sync_type,outcome}   outcome: fetched, inserted, duplicate, rejected
	fleetwatch_sync_devices_total{sync_type}
	fleetwatch_sync_alerts_created_total{sync_type}
	fleetwatch_sync_financial_updates_total{sync_type}
	fleetwatch_sync_errors_total{sync_type,error_type}
	fleetwatch_sync_last_success_timestamp{sync_type}

# Telemetry API

	fleetwatch_telemetry_request_duration_seconds{endpoint,status}
	circuit_breaker_state{name}                       0=closed, 1=half-open, 2=open
	circuit_breaker_requests_total{name,result}
	circuit_breaker_consecutive_failures{name}
	circuit_breaker_state_transitions_total{name,from_state,to_state}

# Sinks and HTTP

	fleetwatch_sink_publish_total{sink,result}
	api_requests_total{method,endpoint,status_code}
	api_request_duration_seconds{method,endpoint}
*/
package metrics
