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
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/fleetwatch/internal/models"
)

// CycleTx is the transaction of one ingestion cycle. It is not safe for
// concurrent use.
//
// Writes within a cycle:
//   - EnsureCompany and EnsureEventType insert catalog rows once.
//   - UpsertDevice coalesces: nil fields keep the stored value and
//     last_event_time only moves forward.
//   - InsertEvent ignores a row_id already stored and reports it as a
//     duplicate.
//   - AddFinancial adds to the (device, UTC day) summary row.
//   - InsertAlert records at most one alert per event.
//
// Nothing is visible to readers until Commit. Rollback after Commit is a
// no-op, so callers may defer it:
//
//	tx, err := db.BeginCycle(ctx)
//	if err != nil {
//		return err
//	}
//	defer func() { _ = tx.Rollback() }()
type CycleTx struct {
	tx  *sql.Tx
	now func() time.Time
}

// BeginCycle opens the transaction for one sync cycle.
func (db *DB) BeginCycle(ctx context.Context) (*CycleTx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cycle transaction: %w", err)
	}
	return &CycleTx{tx: tx, now: db.now}, nil
}

// Commit commits the cycle.
func (c *CycleTx) Commit() error {
	if err := c.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle: %w", err)
	}
	return nil
}

// Rollback aborts the cycle. Calling it after Commit is a no-op.
func (c *CycleTx) Rollback() error {
	if err := c.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back cycle: %w", err)
	}
	return nil
}

// EnsureCompany inserts the company if absent. Existing names are kept.
func (c *CycleTx) EnsureCompany(ctx context.Context, companyID, name string) error {
	if name == "" {
		name = companyID
	}
	_, err := c.tx.ExecContext(ctx,
		`INSERT INTO companies (company_id, name, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (company_id) DO NOTHING`,
		companyID, name, c.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure company %s: %w", companyID, err)
	}
	return nil
}

// EnsureEventType records the catalog entry if absent. Entries with an
// empty type or id are ignored.
func (c *CycleTx) EnsureEventType(ctx context.Context, et models.EventType) error {
	if et.EventType == "" || et.EventID == "" {
		return nil
	}
	_, err := c.tx.ExecContext(ctx,
		`INSERT INTO event_types (event_type, event_id, category, severity) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (event_type, event_id) DO NOTHING`,
		et.EventType, et.EventID, string(et.Category), string(et.Severity))
	if err != nil {
		return fmt.Errorf("failed to ensure event type %s/%s: %w", et.EventType, et.EventID, err)
	}
	return nil
}

const upsertDeviceSQL = `
INSERT INTO devices (
	device_id, imei, serial_number, company_id, account_id, nickname,
	last_known_lat, last_known_lng, last_event_time, vehicle_stock,
	event_satellites, event_rssi, event_voltage, activation_date,
	delivery_date, group_name, full_address, country, admin1, admin2,
	admin3, city, route, street_number, postal_code, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
	$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
)
ON CONFLICT (device_id) DO UPDATE SET
	imei             = COALESCE(excluded.imei, devices.imei),
	company_id       = COALESCE(excluded.company_id, devices.company_id),
	account_id       = COALESCE(excluded.account_id, devices.account_id),
	nickname         = COALESCE(excluded.nickname, devices.nickname),
	last_known_lat   = COALESCE(excluded.last_known_lat, devices.last_known_lat),
	last_known_lng   = COALESCE(excluded.last_known_lng, devices.last_known_lng),
	last_event_time  = GREATEST(
		COALESCE(devices.last_event_time, excluded.last_event_time),
		COALESCE(excluded.last_event_time, devices.last_event_time)),
	vehicle_stock    = COALESCE(excluded.vehicle_stock, devices.vehicle_stock),
	event_satellites = COALESCE(excluded.event_satellites, devices.event_satellites),
	event_rssi       = COALESCE(excluded.event_rssi, devices.event_rssi),
	event_voltage    = COALESCE(excluded.event_voltage, devices.event_voltage),
	activation_date  = COALESCE(excluded.activation_date, devices.activation_date),
	delivery_date    = COALESCE(excluded.delivery_date, devices.delivery_date),
	group_name       = COALESCE(excluded.group_name, devices.group_name),
	full_address     = COALESCE(excluded.full_address, devices.full_address),
	country          = COALESCE(excluded.country, devices.country),
	admin1           = COALESCE(excluded.admin1, devices.admin1),
	admin2           = COALESCE(excluded.admin2, devices.admin2),
	admin3           = COALESCE(excluded.admin3, devices.admin3),
	city             = COALESCE(excluded.city, devices.city),
	route            = COALESCE(excluded.route, devices.route),
	street_number    = COALESCE(excluded.street_number, devices.street_number),
	postal_code      = COALESCE(excluded.postal_code, devices.postal_code),
	updated_at       = excluded.updated_at`

// UpsertDevice inserts or merges a device. Nil fields never overwrite stored
// values, serial_number is fixed at first insert, and last_event_time only
// moves forward. The same statement serves the full inventory snapshot and
// the narrow per-event update.
func (c *CycleTx) UpsertDevice(ctx context.Context, d *models.Device) error {
	if d.DeviceID == "" {
		return fmt.Errorf("upsert device: empty device id")
	}
	serial := d.SerialNumber
	if serial == "" {
		serial = d.DeviceID
	}

	_, err := c.tx.ExecContext(ctx, upsertDeviceSQL,
		d.DeviceID,
		deref(d.IMEI),
		serial,
		deref(d.CompanyID),
		deref(d.AccountID),
		deref(d.Nickname),
		deref(d.LastKnownLat),
		deref(d.LastKnownLng),
		derefTime(d.LastEventTime),
		deref(d.VehicleStock),
		deref(d.EventSatellites),
		deref(d.EventRSSI),
		deref(d.EventVoltage),
		deref(d.ActivationDate),
		deref(d.DeliveryDate),
		deref(d.GroupName),
		deref(d.FullAddress),
		deref(d.Country),
		deref(d.Admin1),
		deref(d.Admin2),
		deref(d.Admin3),
		deref(d.City),
		deref(d.Route),
		deref(d.StreetNumber),
		deref(d.PostalCode),
		c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", d.DeviceID, err)
	}
	return nil
}

// InsertEvent stores a parsed event keyed by row id. A row id that is
// already stored is skipped and reported as not inserted. An empty
// EventUUID is filled in before the insert.
func (c *CycleTx) InsertEvent(ctx context.Context, ne *models.NewEvent) (bool, error) {
	if ne.EventUUID == "" {
		ne.EventUUID = uuid.New().String()
	}
	e := &ne.Event

	res, err := c.tx.ExecContext(ctx,
		`INSERT INTO device_events (
			event_uuid, row_id, device_id, imei, serial_number, company_id, account_id,
			event_type, event_id, event_entry, parsed_amount, parsed_status,
			is_door_event, is_financial_event, is_cash_box_event,
			event_timestamp, report_timestamp, severity, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (row_id) DO NOTHING`,
		ne.EventUUID,
		e.RowID,
		e.DeviceID,
		emptyAsNull(e.IMEI),
		emptyAsNull(e.SerialNumber),
		ne.CompanyID,
		deref(ne.AccountID),
		emptyAsNull(e.EventType),
		emptyAsNull(e.EventID),
		emptyAsNull(e.EventEntry),
		deref(e.ParsedAmount),
		deref(e.ParsedStatus),
		e.IsDoorEvent,
		e.IsFinancialEvent,
		e.IsCashBoxEvent,
		derefTime(e.EventTimestamp),
		derefTime(e.ReportTimestamp),
		string(e.Severity),
		c.now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert event row %d: %w", e.RowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for event row %d: %w", e.RowID, err)
	}
	return n > 0, nil
}

// AddFinancial adds amount to the (device, UTC day) summary, counts one
// transaction and advances the last transaction time.
func (c *CycleTx) AddFinancial(ctx context.Context, deviceID, companyID string, day time.Time, amount float64, at *time.Time) error {
	_, err := c.tx.ExecContext(ctx,
		`INSERT INTO financial_summary (device_id, company_id, summary_date, total_cash_in, transaction_count, last_transaction_time)
		 VALUES ($1, $2, CAST($3 AS DATE), $4, 1, $5)
		 ON CONFLICT (device_id, summary_date) DO UPDATE SET
			total_cash_in = financial_summary.total_cash_in + excluded.total_cash_in,
			transaction_count = financial_summary.transaction_count + 1,
			last_transaction_time = GREATEST(
				COALESCE(financial_summary.last_transaction_time, excluded.last_transaction_time),
				COALESCE(excluded.last_transaction_time, financial_summary.last_transaction_time))`,
		deviceID, companyID, day.UTC().Format(time.DateOnly), amount, derefTime(at))
	if err != nil {
		return fmt.Errorf("failed to update financial summary for %s: %w", deviceID, err)
	}
	return nil
}

// InsertAlert raises the alert for an event once. It reports whether a new
// row was written.
func (c *CycleTx) InsertAlert(ctx context.Context, a *models.ActiveAlert) (bool, error) {
	created := a.CreatedAt
	if created.IsZero() {
		created = c.now()
	}
	res, err := c.tx.ExecContext(ctx,
		`INSERT INTO active_alerts (event_uuid, device_id, alert_type, severity, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_uuid) DO NOTHING`,
		a.EventUUID, a.DeviceID, a.AlertType, string(a.Severity), created.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert alert for event %s: %w", a.EventUUID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected for alert %s: %w", a.EventUUID, err)
	}
	return n > 0, nil
}

// deref turns a nil pointer into SQL NULL and anything else into its value.
func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func derefTime(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return p.UTC()
}

func emptyAsNull(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
