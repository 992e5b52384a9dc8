// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/fleetwatch/internal/database/query"
	"github.com/tomtom215/fleetwatch/internal/models"
)

const eventSelect = `SELECT
	de.event_uuid, de.row_id, de.device_id, de.imei, de.serial_number, de.company_id,
	de.account_id, de.event_type, de.event_id, de.event_entry, de.parsed_amount,
	de.parsed_status, de.is_door_event, de.is_financial_event, de.is_cash_box_event,
	de.event_timestamp, de.report_timestamp, de.severity, et.category,
	COALESCE(de.is_acknowledged, false), de.acknowledged_by, de.acknowledged_at, de.created_at
FROM device_events de
LEFT JOIN event_types et ON et.event_type = de.event_type AND et.event_id = de.event_id`

func scanEvent(s rowScanner) (*models.StoredEvent, error) {
	var e models.StoredEvent
	var severity string
	var category *string
	err := s.Scan(
		&e.EventUUID, &e.RowID, &e.DeviceID, &e.IMEI, &e.SerialNumber, &e.CompanyID,
		&e.AccountID, &e.EventType, &e.EventID, &e.EventEntry, &e.ParsedAmount,
		&e.ParsedStatus, &e.IsDoorEvent, &e.IsFinancialEvent, &e.IsCashBoxEvent,
		&e.EventTimestamp, &e.ReportTimestamp, &severity, &category,
		&e.IsAcknowledged, &e.AcknowledgedBy, &e.AcknowledgedAt, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Severity = models.Severity(severity)
	if category != nil {
		c := models.Category(*category)
		e.Category = &c
	}
	return &e, nil
}

// EventFilter selects events, newest event time first. DeviceID matches the
// device id, IMEI or serial number.
type EventFilter struct {
	CompanyID string
	DeviceID  string
	Limit     int
}

// ListEvents returns events matching f with their catalog category.
func (db *DB) ListEvents(ctx context.Context, f EventFilter) ([]models.StoredEvent, error) {
	wb := query.NewWhereBuilder()
	wb.AddEqual("de.company_id", f.CompanyID)
	wb.AddAnyEqual([]string{"de.device_id", "de.imei", "de.serial_number"}, f.DeviceID)

	q := eventSelect + ` ` + wb.Where() +
		` ORDER BY de.event_timestamp DESC NULLS LAST, de.row_id DESC LIMIT ` + wb.Placeholder(clampLimit(f.Limit))

	rows, err := db.conn.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.StoredEvent{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetEvent returns one event or ErrNotFound.
func (db *DB) GetEvent(ctx context.Context, eventUUID string) (*models.StoredEvent, error) {
	row := db.conn.QueryRowContext(ctx, eventSelect+` WHERE de.event_uuid = $1`, eventUUID)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventUUID, err)
	}
	return e, nil
}

// AcknowledgeEvent marks an event as acknowledged by the given operator.
// Acknowledging again overwrites who and when. Unknown uuids return
// ErrNotFound.
func (db *DB) AcknowledgeEvent(ctx context.Context, eventUUID, by string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE device_events
		 SET is_acknowledged = true, acknowledged_by = $2, acknowledged_at = $3
		 WHERE event_uuid = $1`,
		eventUUID, emptyAsNull(by), db.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to acknowledge event %s: %w", eventUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for event %s: %w", eventUUID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
