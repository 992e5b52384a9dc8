// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/models"
	syncpkg "github.com/tomtom215/fleetwatch/internal/sync"
)

// SyncLogs lists the sync audit log, newest first. Logs are not cached so
// operators see a manual cycle right away.
func (h *Handler) SyncLogs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, apiErr := parseIntParam(r, "limit")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	q := r.URL.Query()
	req := SyncLogsRequest{
		AccountID: q.Get("account_id"),
		SyncType:  q.Get("sync_type"),
		Limit:     limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	logs, err := h.store.ListSyncLogs(r.Context(), database.SyncLogFilter{
		AccountID: req.AccountID,
		SyncType:  req.SyncType,
		Limit:     req.Limit,
	})
	if err != nil {
		respondStoreError(w, r, "sync logs", err)
		return
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	respondList(w, r, start, logs)
}

// SyncStatus reports the scheduler state and the last cycle.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "sync is not configured", nil)
		return
	}
	respondSuccess(w, r, time.Now(), h.sync.Status(), nil)
}

// SyncRun runs a periodic-type cycle now and returns its result. It waits
// for a cycle already in progress.
func (h *Handler) SyncRun(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "sync is not configured", nil)
		return
	}

	res, err := h.sync.RunOnce(r.Context())
	if err != nil {
		respondSyncError(w, r, err)
		return
	}
	respondSuccess(w, r, start, res, nil)
}

// SyncWindow runs a one-shot backfill over the requested window.
func (h *Handler) SyncWindow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.sync == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "sync is not configured", nil)
		return
	}

	var req SyncWindowRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	from, to := req.bounds()
	res, err := h.sync.RunWindow(r.Context(), req.AccountID, from, to)
	if err != nil {
		respondSyncError(w, r, err)
		return
	}
	respondSuccess(w, r, start, res, nil)
}

// respondSyncError maps scheduler and cycle errors to status codes.
func respondSyncError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, syncpkg.ErrInvalidWindow):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "start must not be after end", nil)
	case errors.Is(err, syncpkg.ErrSchedulerStopped):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "scheduler is stopped", nil)
	default:
		respondAPIError(w, r, http.StatusBadGateway, &models.APIError{
			Code:    ErrCodeSyncFailed,
			Message: "sync cycle failed",
			Details: map[string]interface{}{"error": err.Error()},
		}, err)
	}
}
