// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

import "time"

// Device is a gaming device keyed by its serial. Nil fields are unknown; an
// upsert never overwrites a known value with nil.
type Device struct {
	DeviceID      string     `json:"device_id"`
	IMEI          *string    `json:"imei,omitempty"`
	SerialNumber  string     `json:"serial_number"`
	CompanyID     *string    `json:"company_id,omitempty"`
	AccountID     *string    `json:"account_id,omitempty"`
	Nickname      *string    `json:"nickname,omitempty"`
	LastKnownLat  *float64   `json:"last_known_lat,omitempty"`
	LastKnownLng  *float64   `json:"last_known_lng,omitempty"`
	LastEventTime *time.Time `json:"last_event_time,omitempty"`

	VehicleStock    *string  `json:"vehicle_stock,omitempty"`
	EventSatellites *float64 `json:"event_satellites,omitempty"`
	EventRSSI       *int64   `json:"event_rssi,omitempty"`
	EventVoltage    *float64 `json:"event_voltage,omitempty"`
	ActivationDate  *string  `json:"activation_date,omitempty"`
	DeliveryDate    *string  `json:"delivery_date,omitempty"`
	GroupName       *string  `json:"group_name,omitempty"`

	FullAddress  *string `json:"full_address,omitempty"`
	Country      *string `json:"country,omitempty"`
	Admin1       *string `json:"admin1,omitempty"`
	Admin2       *string `json:"admin2,omitempty"`
	Admin3       *string `json:"admin3,omitempty"`
	City         *string `json:"city,omitempty"`
	Route        *string `json:"route,omitempty"`
	StreetNumber *string `json:"street_number,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Company owns devices. Rows are created on first sight and never renamed.
type Company struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}
