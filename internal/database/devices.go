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

const deviceColumns = `device_id, imei, serial_number, company_id, account_id, nickname,
	last_known_lat, last_known_lng, last_event_time, vehicle_stock,
	event_satellites, event_rssi, event_voltage, activation_date,
	delivery_date, group_name, full_address, country, admin1, admin2,
	admin3, city, route, street_number, postal_code, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(s rowScanner) (*models.Device, error) {
	var d models.Device
	err := s.Scan(
		&d.DeviceID, &d.IMEI, &d.SerialNumber, &d.CompanyID, &d.AccountID, &d.Nickname,
		&d.LastKnownLat, &d.LastKnownLng, &d.LastEventTime, &d.VehicleStock,
		&d.EventSatellites, &d.EventRSSI, &d.EventVoltage, &d.ActivationDate,
		&d.DeliveryDate, &d.GroupName, &d.FullAddress, &d.Country, &d.Admin1, &d.Admin2,
		&d.Admin3, &d.City, &d.Route, &d.StreetNumber, &d.PostalCode, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeviceFilter selects devices, ordered by device id.
type DeviceFilter struct {
	CompanyID string
	Limit     int
}

// ListDevices returns devices matching f.
func (db *DB) ListDevices(ctx context.Context, f DeviceFilter) ([]models.Device, error) {
	wb := query.NewWhereBuilder()
	wb.AddEqual("company_id", f.CompanyID)

	q := `SELECT ` + deviceColumns + ` FROM devices ` + wb.Where() +
		` ORDER BY device_id LIMIT ` + wb.Placeholder(clampLimit(f.Limit))

	rows, err := db.conn.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

// GetDevice returns one device or ErrNotFound.
func (db *DB) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE device_id = $1`, deviceID)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device %s: %w", deviceID, err)
	}
	return d, nil
}
