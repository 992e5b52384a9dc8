// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync Metrics
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetwatch_sync_duration_seconds",
			Help:    "Duration of ingestion cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"sync_type"},
	)

	SyncEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sync_events_total",
			Help: "Events seen by ingestion cycles, by outcome",
		},
		[]string{"sync_type", "outcome"}, // fetched, inserted, duplicate, rejected
	)

	SyncDevices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sync_devices_total",
			Help: "Device snapshots upserted by ingestion cycles",
		},
		[]string{"sync_type"},
	)

	SyncAlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sync_alerts_created_total",
			Help: "Active alerts raised by ingestion cycles",
		},
		[]string{"sync_type"},
	)

	SyncFinancialUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sync_financial_updates_total",
			Help: "Financial summary increments applied by ingestion cycles",
		},
		[]string{"sync_type"},
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sync_errors_total",
			Help: "Failed ingestion cycles by error category",
		},
		[]string{"sync_type", "error_type"},
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fleetwatch_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful ingestion cycle",
		},
		[]string{"sync_type"},
	)

	// Telemetry API Metrics
	TelemetryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetwatch_telemetry_request_duration_seconds",
			Help:    "Duration of telemetry API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Sink Metrics
	SinkPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetwatch_sink_publish_total",
			Help: "Records handed to post-commit sinks, by result",
		},
		[]string{"sink", "result"}, // success, failure
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "API requests currently being served",
		},
	)

	APICacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_results_total",
			Help: "Read cache lookups, by result",
		},
		[]string{"result"}, // hit, miss
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_stream_connections",
			Help: "Current number of alert stream websocket connections",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_stream_messages_dropped_total",
			Help: "Alert stream messages dropped because a buffer was full",
		},
	)
)

// Error categories for SyncErrors.
const (
	ErrorTypeTelemetry = "telemetry_api"
	ErrorTypeDatabase  = "database"
	ErrorTypeCanceled  = "canceled"
	ErrorTypeOther     = "other"
)

// SyncCounts is the per-cycle tally reported to RecordSyncCycle.
type SyncCounts struct {
	Fetched          int
	Inserted         int
	Duplicates       int
	Rejected         int
	Devices          int
	AlertsCreated    int
	FinancialUpdates int
}

// RecordSyncCycle records one finished ingestion cycle. errorType is ignored
// when err is nil.
func RecordSyncCycle(syncType string, duration time.Duration, counts SyncCounts, err error, errorType string) {
	SyncDuration.WithLabelValues(syncType).Observe(duration.Seconds())
	SyncEvents.WithLabelValues(syncType, "fetched").Add(float64(counts.Fetched))

	if err != nil {
		if errorType == "" {
			errorType = ErrorTypeOther
		}
		SyncErrors.WithLabelValues(syncType, errorType).Inc()
		return
	}

	SyncEvents.WithLabelValues(syncType, "inserted").Add(float64(counts.Inserted))
	SyncEvents.WithLabelValues(syncType, "duplicate").Add(float64(counts.Duplicates))
	SyncEvents.WithLabelValues(syncType, "rejected").Add(float64(counts.Rejected))
	SyncDevices.WithLabelValues(syncType).Add(float64(counts.Devices))
	SyncAlertsCreated.WithLabelValues(syncType).Add(float64(counts.AlertsCreated))
	SyncFinancialUpdates.WithLabelValues(syncType).Add(float64(counts.FinancialUpdates))
	SyncLastSuccess.WithLabelValues(syncType).Set(float64(time.Now().Unix()))
}

// RecordTelemetryRequest records one telemetry API call. status is the HTTP
// status code, or "error" for transport failures.
func RecordTelemetryRequest(endpoint, status string, duration time.Duration) {
	TelemetryRequestDuration.WithLabelValues(endpoint, status).Observe(duration.Seconds())
}

// RecordSinkPublish records n records handed to a sink.
func RecordSinkPublish(sink string, n int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	SinkPublishes.WithLabelValues(sink, result).Add(float64(n))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the active request gauge up or down.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// RecordCacheResult records one read cache lookup.
func RecordCacheResult(hit bool) {
	if hit {
		APICacheResults.WithLabelValues("hit").Inc()
		return
	}
	APICacheResults.WithLabelValues("miss").Inc()
}
