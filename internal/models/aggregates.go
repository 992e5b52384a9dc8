// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

import "time"

// FinancialSummary is the per-device, per-UTC-day cash-in rollup.
type FinancialSummary struct {
	DeviceID            string     `json:"device_id"`
	CompanyID           string     `json:"company_id"`
	SummaryDate         time.Time  `json:"summary_date"`
	TotalCashIn         float64    `json:"total_cash_in"`
	TransactionCount    int64      `json:"transaction_count"`
	LastTransactionTime *time.Time `json:"last_transaction_time,omitempty"`
}

// ActiveAlert is raised once per critical door or cash box event.
type ActiveAlert struct {
	EventUUID string    `json:"event_uuid"`
	DeviceID  string    `json:"device_id"`
	AlertType string    `json:"alert_type"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertNotification is the message published for each new alert.
type AlertNotification struct {
	EventUUID      string     `json:"event_uuid"`
	RowID          int64      `json:"row_id"`
	DeviceID       string     `json:"device_id"`
	CompanyID      string     `json:"company_id"`
	AlertType      string     `json:"alert_type"`
	Severity       Severity   `json:"severity"`
	EventEntry     string     `json:"event_entry,omitempty"`
	EventTimestamp *time.Time `json:"event_timestamp,omitempty"`
	RaisedAt       time.Time  `json:"raised_at"`
}

// Sync log statuses.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// Sync types.
const (
	SyncTypeEvents       = "events"
	SyncTypeEventsWindow = "events_window"
)

// SyncLog records one ingestion cycle. Rows are append-only.
type SyncLog struct {
	SyncID       string    `json:"sync_id"`
	SyncType     string    `json:"sync_type"`
	AccountID    *string   `json:"account_id,omitempty"`
	RowsFetched  int       `json:"rows_fetched"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
