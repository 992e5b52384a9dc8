// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/models"
	syncpkg "github.com/tomtom215/fleetwatch/internal/sync"
)

// healthCheckTimeout bounds the database checks of the health endpoints.
const healthCheckTimeout = 3 * time.Second

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status            string          `json:"status"` // healthy, degraded
	Version           string          `json:"version"`
	DatabaseDriver    string          `json:"database_driver"`
	DatabaseConnected bool            `json:"database_connected"`
	Store             *database.Stats `json:"store,omitempty"`
	TelemetryBreaker  string          `json:"telemetry_breaker,omitempty"`
	Sync              *syncpkg.Status `json:"sync,omitempty"`
	Uptime            float64         `json:"uptime_seconds"`
}

// Health reports database connectivity, row counts, breaker state and the
// scheduler status. It always answers 200; Status says whether the service
// is degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	health := HealthStatus{
		Status:         "healthy",
		Version:        Version,
		DatabaseDriver: h.store.Driver(),
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	health.DatabaseConnected = h.store.Ping(ctx) == nil
	if health.DatabaseConnected {
		if stats, err := h.store.Stats(ctx); err == nil {
			health.Store = stats
		}
	} else {
		health.Status = "degraded"
	}

	if h.breaker != nil {
		health.TelemetryBreaker = h.breaker.State()
		if health.TelemetryBreaker == "open" {
			health.Status = "degraded"
		}
	}

	if h.sync != nil {
		st := h.sync.Status()
		health.Sync = &st
	}

	respondSuccess(w, r, start, health, nil)
}

// HealthLive answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, time.Now(), map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, nil)
}

// HealthReady answers 200 when the database is reachable and 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondAPIError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "database is not reachable",
			Details: map[string]interface{}{"ready": false},
		}, err)
		return
	}
	respondSuccess(w, r, time.Now(), map[string]interface{}{"ready": true}, nil)
}
