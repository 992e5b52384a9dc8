// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/fleetwatch/internal/database/query"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// AlertFilter selects active alerts, newest first. CompanyID matches the
// company of the alerting event.
type AlertFilter struct {
	CompanyID string
	DeviceID  string
	Limit     int
}

// ListAlerts returns active alerts matching f.
func (db *DB) ListAlerts(ctx context.Context, f AlertFilter) ([]models.ActiveAlert, error) {
	wb := query.NewWhereBuilder()
	wb.AddEqual("de.company_id", f.CompanyID)
	wb.AddEqual("a.device_id", f.DeviceID)

	q := `SELECT a.event_uuid, a.device_id, a.alert_type, a.severity, a.created_at
		FROM active_alerts a
		LEFT JOIN device_events de ON de.event_uuid = a.event_uuid ` + wb.Where() + `
		ORDER BY a.created_at DESC, a.event_uuid
		LIMIT ` + wb.Placeholder(clampLimit(f.Limit))

	rows, err := db.conn.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.ActiveAlert{}
	for rows.Next() {
		var a models.ActiveAlert
		var severity string
		if err := rows.Scan(&a.EventUUID, &a.DeviceID, &a.AlertType, &severity, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Severity = models.Severity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// FinancialFilter selects daily summaries. From and To bound the UTC
// calendar day, inclusive.
type FinancialFilter struct {
	CompanyID string
	DeviceID  string
	From      *time.Time
	To        *time.Time
	Limit     int
}

// ListFinancialSummaries returns summaries matching f, newest day first.
func (db *DB) ListFinancialSummaries(ctx context.Context, f FinancialFilter) ([]models.FinancialSummary, error) {
	wb := query.NewWhereBuilder()
	wb.AddEqual("company_id", f.CompanyID)
	wb.AddEqual("device_id", f.DeviceID)
	wb.AddDateRange("summary_date", f.From, f.To)

	q := `SELECT device_id, company_id, summary_date, total_cash_in, transaction_count, last_transaction_time
		FROM financial_summary ` + wb.Where() + `
		ORDER BY summary_date DESC, device_id
		LIMIT ` + wb.Placeholder(clampLimit(f.Limit))

	rows, err := db.conn.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.FinancialSummary{}
	for rows.Next() {
		var s models.FinancialSummary
		if err := rows.Scan(&s.DeviceID, &s.CompanyID, &s.SummaryDate, &s.TotalCashIn,
			&s.TransactionCount, &s.LastTransactionTime); err != nil {
			return nil, fmt.Errorf("failed to scan financial summary: %w", err)
		}
		s.SummaryDate = s.SummaryDate.UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Stats holds table row counts for health reporting.
type Stats struct {
	Companies     int64 `json:"companies"`
	Devices       int64 `json:"devices"`
	Events        int64 `json:"events"`
	ActiveAlerts  int64 `json:"active_alerts"`
	SchemaVersion int   `json:"schema_version"`
}

// Stats counts rows in the main tables.
func (db *DB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM companies),
		(SELECT COUNT(*) FROM devices),
		(SELECT COUNT(*) FROM device_events),
		(SELECT COUNT(*) FROM active_alerts)`).
		Scan(&s.Companies, &s.Devices, &s.Events, &s.ActiveAlerts)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	v, err := db.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	s.SchemaVersion = v
	return &s, nil
}
