// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/middleware"
)

// NewRouter mounts every route on a chi router.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	mw := NewChiMiddleware(ChiMiddlewareConfigFromServer(cfg))
	r := chi.NewRouter()

	// Applied to all routes, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Probes stay unauthenticated.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitHealth())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(middleware.APIKey(cfg.APIKey))

		// Upgraded connections bypass compression.
		r.Get("/alerts/stream", h.AlertStream)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Get("/devices", h.Devices)
			r.Get("/devices/{deviceID}", h.Device)
			r.Get("/events", h.Events)
			r.Post("/events/{eventUUID}/ack", h.AcknowledgeEvent)
			r.Get("/alerts", h.Alerts)
			r.Get("/financial-summary", h.FinancialSummary)

			r.Route("/sync", func(r chi.Router) {
				r.Get("/logs", h.SyncLogs)
				r.Get("/status", h.SyncStatus)
				r.Post("/run", h.SyncRun)
				r.Post("/window", h.SyncWindow)
			})
		})
	})

	return r
}
