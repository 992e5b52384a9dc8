// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

// RawEvent is one record from the telemetry events report. Nothing is
// validated; any field may be missing.
type RawEvent struct {
	Serial         FlexString `json:"serial"`
	IMEI           FlexString `json:"imei"`
	AccountID      FlexString `json:"accountid"`
	EventType      FlexString `json:"eventtype"`
	EventID        FlexString `json:"eventid"`
	RowID          FlexString `json:"row_id"`
	Entry          FlexString `json:"entry"`
	EventTimestamp FlexString `json:"eventtimestamp"`
	ReportTime     FlexString `json:"reporttime"`
}

// RawDevice is one record from the telemetry devices endpoint.
type RawDevice struct {
	Serial                FlexString `json:"serial"`
	IMEI                  FlexString `json:"imei"`
	AccountID             FlexString `json:"accountid"`
	AccountName           FlexString `json:"accountname"`
	Nickname              FlexString `json:"nickname"`
	EventLat              FlexString `json:"eventlat"`
	EventLng              FlexString `json:"eventlng"`
	LastGPSEventTimestamp FlexString `json:"lastgpseventtimestamp"`
	VehicleStock          FlexString `json:"vehiclestock"`
	EventSatellites       FlexString `json:"eventsatellites"`
	EventRSSI             FlexString `json:"eventrssi"`
	EventVoltage          FlexString `json:"eventvoltage"`
	ActivationDate        FlexString `json:"activationdate"`
	DeliveryDate          FlexString `json:"deliverydate"`
	GroupName             FlexString `json:"groupname"`
	FullAddress           FlexString `json:"fulladdress"`
	Country               FlexString `json:"country"`
	Admin1                FlexString `json:"admin1"`
	Admin2                FlexString `json:"admin2"`
	Admin3                FlexString `json:"admin3"`
	City                  FlexString `json:"city"`
	Route                 FlexString `json:"route"`
	Number                FlexString `json:"number"`
	PostalCode            FlexString `json:"postalcode"`
}
