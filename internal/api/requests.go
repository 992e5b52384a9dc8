// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fleetwatch/internal/models"
	"github.com/tomtom215/fleetwatch/internal/validation"
)

// FleetListRequest holds the filters shared by the device, event and alert
// lists. Limit 0 means the store default.
type FleetListRequest struct {
	CompanyID string `query:"company_id" validate:"omitempty,identifier"`
	DeviceID  string `query:"device_id" validate:"omitempty,identifier"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// FinancialSummaryRequest filters daily summaries by an inclusive date range.
type FinancialSummaryRequest struct {
	CompanyID string `query:"company_id" validate:"omitempty,identifier"`
	DeviceID  string `query:"device_id" validate:"omitempty,identifier"`
	From      string `query:"from" validate:"omitempty,dateonly"`
	To        string `query:"to" validate:"omitempty,dateonly"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// SyncLogsRequest filters the sync audit log.
type SyncLogsRequest struct {
	AccountID string `query:"account_id" validate:"omitempty,identifier"`
	SyncType  string `query:"sync_type" validate:"omitempty,oneof=events events_window"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// DevicePathRequest validates the {deviceID} path parameter.
type DevicePathRequest struct {
	DeviceID string `query:"device_id" validate:"required,identifier"`
}

// AcknowledgeRequest is the body of POST /events/{eventUUID}/ack.
type AcknowledgeRequest struct {
	EventUUID      string `json:"-" query:"event_uuid" validate:"required,uuid"`
	AcknowledgedBy string `json:"acknowledged_by" validate:"required,max=100"`
}

// SyncWindowRequest is the body of POST /sync/window. Empty bounds leave
// the window open on that side, and an empty account uses the configured
// one.
type SyncWindowRequest struct {
	AccountID string `json:"account_id" validate:"omitempty,identifier"`
	Start     string `json:"start" validate:"omitempty,rfc3339"`
	End       string `json:"end" validate:"omitempty,rfc3339"`
}

// bounds parses the validated window bounds.
func (req *SyncWindowRequest) bounds() (start, end *time.Time) {
	return parseRFC3339(req.Start), parseRFC3339(req.End)
}

// dates parses the validated date range. Both ends are inclusive days.
func (req *FinancialSummaryRequest) dates() (from, to *time.Time, apiErr *models.APIError) {
	from = parseDate(req.From)
	to = parseDate(req.To)
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, validation.New("to", "gtefield", "to must not be before from", req.To).ToAPIError()
	}
	return from, to, nil
}

func parseRFC3339(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(validation.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func fleetListRequest(r *http.Request) (*FleetListRequest, *models.APIError) {
	limit, apiErr := parseIntParam(r, "limit")
	if apiErr != nil {
		return nil, apiErr
	}
	q := r.URL.Query()
	req := &FleetListRequest{
		CompanyID: q.Get("company_id"),
		DeviceID:  q.Get("device_id"),
		Limit:     limit,
	}
	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

func devicePathRequest(r *http.Request) (*DevicePathRequest, *models.APIError) {
	req := &DevicePathRequest{DeviceID: chi.URLParam(r, "deviceID")}
	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}
