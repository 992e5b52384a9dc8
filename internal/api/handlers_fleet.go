// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fleetwatch/internal/cache"
	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// Devices lists devices, optionally for one company.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := fleetListRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	f := database.DeviceFilter{CompanyID: req.CompanyID, Limit: req.Limit}
	devices, err := cachedList(h, cache.GenerateKey("devices", f), func() ([]models.Device, error) {
		return h.store.ListDevices(r.Context(), f)
	})
	if err != nil {
		respondStoreError(w, r, "devices", err)
		return
	}
	respondList(w, r, start, devices)
}

// Device returns one device by id.
func (h *Handler) Device(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := devicePathRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	device, err := h.store.GetDevice(r.Context(), req.DeviceID)
	if err != nil {
		respondStoreError(w, r, "device", err)
		return
	}
	respondSuccess(w, r, start, device, nil)
}

// Events lists events newest first. device_id matches the device id, IMEI
// or serial number.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := fleetListRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	f := database.EventFilter{CompanyID: req.CompanyID, DeviceID: req.DeviceID, Limit: req.Limit}
	events, err := cachedList(h, cache.GenerateKey("events", f), func() ([]models.StoredEvent, error) {
		return h.store.ListEvents(r.Context(), f)
	})
	if err != nil {
		respondStoreError(w, r, "events", err)
		return
	}
	respondList(w, r, start, events)
}

// AcknowledgeEvent marks an event as seen by an operator and returns it.
func (h *Handler) AcknowledgeEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req AcknowledgeRequest
	if apiErr := decodeBody(w, r, &req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	req.EventUUID = chi.URLParam(r, "eventUUID")
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	if err := h.store.AcknowledgeEvent(r.Context(), req.EventUUID, req.AcknowledgedBy); err != nil {
		respondStoreError(w, r, "event", err)
		return
	}
	h.cache.Clear()

	logging.Ctx(r.Context()).Info().
		Str("event_uuid", req.EventUUID).
		Str("acknowledged_by", sanitizeLogValue(req.AcknowledgedBy)).
		Msg("Event acknowledged")

	event, err := h.store.GetEvent(r.Context(), req.EventUUID)
	if err != nil {
		respondStoreError(w, r, "event", err)
		return
	}
	respondSuccess(w, r, start, event, nil)
}

// Alerts lists active alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, apiErr := fleetListRequest(r)
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	f := database.AlertFilter{CompanyID: req.CompanyID, DeviceID: req.DeviceID, Limit: req.Limit}
	alerts, err := cachedList(h, cache.GenerateKey("alerts", f), func() ([]models.ActiveAlert, error) {
		return h.store.ListAlerts(r.Context(), f)
	})
	if err != nil {
		respondStoreError(w, r, "alerts", err)
		return
	}
	respondList(w, r, start, alerts)
}

// FinancialSummary lists daily cash-in totals, newest day first.
func (h *Handler) FinancialSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, apiErr := parseIntParam(r, "limit")
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	q := r.URL.Query()
	req := FinancialSummaryRequest{
		CompanyID: q.Get("company_id"),
		DeviceID:  q.Get("device_id"),
		From:      q.Get("from"),
		To:        q.Get("to"),
		Limit:     limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	from, to, apiErr := req.dates()
	if apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	f := database.FinancialFilter{
		CompanyID: req.CompanyID,
		DeviceID:  req.DeviceID,
		From:      from,
		To:        to,
		Limit:     req.Limit,
	}
	summaries, err := cachedList(h, cache.GenerateKey("financial", f), func() ([]models.FinancialSummary, error) {
		return h.store.ListFinancialSummaries(r.Context(), f)
	})
	if err != nil {
		respondStoreError(w, r, "financial summaries", err)
		return
	}
	respondList(w, r, start, summaries)
}
