// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/fleetwatch/internal/cache"
	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/models"
	syncpkg "github.com/tomtom215/fleetwatch/internal/sync"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// Store is the read side of the fleet database plus acknowledgement.
type Store interface {
	Driver() string
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (*database.Stats, error)
	ListDevices(ctx context.Context, f database.DeviceFilter) ([]models.Device, error)
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	ListEvents(ctx context.Context, f database.EventFilter) ([]models.StoredEvent, error)
	GetEvent(ctx context.Context, eventUUID string) (*models.StoredEvent, error)
	AcknowledgeEvent(ctx context.Context, eventUUID, by string) error
	ListAlerts(ctx context.Context, f database.AlertFilter) ([]models.ActiveAlert, error)
	ListFinancialSummaries(ctx context.Context, f database.FinancialFilter) ([]models.FinancialSummary, error)
	ListSyncLogs(ctx context.Context, f database.SyncLogFilter) ([]models.SyncLog, error)
}

// SyncController runs and reports ingestion cycles.
type SyncController interface {
	Status() syncpkg.Status
	RunOnce(ctx context.Context) (*ingest.SyncResult, error)
	RunWindow(ctx context.Context, account string, start, end *time.Time) (*ingest.SyncResult, error)
}

// BreakerState reports the telemetry circuit breaker state.
type BreakerState interface {
	State() string
}

// Handler holds the dependencies of the API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: health and probes
//   - handlers_fleet.go: devices, events, alerts, financial summaries
//   - handlers_sync.go: sync logs, status and manual cycles
//   - handlers_stream.go: the live alert stream
type Handler struct {
	store       Store
	sync        SyncController
	cache       *cache.Cache
	breaker     BreakerState
	alertStream http.Handler
	startTime   time.Time
}

// NewHandler creates the API handler. c may be nil to disable caching.
func NewHandler(store Store, syncer SyncController, c *cache.Cache) *Handler {
	return &Handler{
		store:     store,
		sync:      syncer,
		cache:     c,
		startTime: time.Now(),
	}
}

// SetTelemetryBreaker adds the breaker state to health responses.
func (h *Handler) SetTelemetryBreaker(b BreakerState) {
	h.breaker = b
}

// SetAlertStream enables GET /api/v1/alerts/stream.
func (h *Handler) SetAlertStream(stream http.Handler) {
	h.alertStream = stream
}

// cachedList serves a list from the read cache or loads and stores it.
// Lists are never nil so they encode as [].
func cachedList[T any](h *Handler, key string, load func() ([]T, error)) ([]T, error) {
	if v, ok := h.cache.Get(key); ok {
		if items, ok := v.([]T); ok {
			return items, nil
		}
	}
	items, err := load()
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	h.cache.Set(key, items)
	return items, nil
}
