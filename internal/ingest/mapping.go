// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package ingest

import (
	"time"

	"github.com/tomtom215/fleetwatch/internal/classifier"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// unknownCompany owns events whose account cannot be determined.
const unknownCompany = "unknown"

// companyFor picks the owning company of an event: its own account, then the
// cycle's target account, then unknownCompany.
func companyFor(account models.FlexString, target string) string {
	if account.Present() {
		return account.String()
	}
	if target != "" {
		return target
	}
	return unknownCompany
}

// deviceFromRaw maps a snapshot record onto the device row. Absent or
// unparseable values stay nil so the upsert keeps what is stored.
func deviceFromRaw(raw *models.RawDevice) *models.Device {
	d := &models.Device{
		DeviceID:        raw.Serial.String(),
		SerialNumber:    raw.Serial.String(),
		IMEI:            raw.IMEI.Ptr(),
		CompanyID:       raw.AccountID.Ptr(),
		AccountID:       raw.AccountID.Ptr(),
		Nickname:        raw.Nickname.Ptr(),
		LastEventTime:   classifier.ParseTimestamp(raw.LastGPSEventTimestamp.String()),
		VehicleStock:    raw.VehicleStock.Ptr(),
		ActivationDate:  raw.ActivationDate.Ptr(),
		DeliveryDate:    raw.DeliveryDate.Ptr(),
		GroupName:       raw.GroupName.Ptr(),
		FullAddress:     raw.FullAddress.Ptr(),
		Country:         raw.Country.Ptr(),
		Admin1:          raw.Admin1.Ptr(),
		Admin2:          raw.Admin2.Ptr(),
		Admin3:          raw.Admin3.Ptr(),
		City:            raw.City.Ptr(),
		Route:           raw.Route.Ptr(),
		StreetNumber:    raw.Number.Ptr(),
		PostalCode:      raw.PostalCode.Ptr(),
		LastKnownLat:    floatPtr(raw.EventLat),
		LastKnownLng:    floatPtr(raw.EventLng),
		EventSatellites: floatPtr(raw.EventSatellites),
		EventVoltage:    floatPtr(raw.EventVoltage),
	}
	if v, ok := raw.EventRSSI.Int(); ok {
		d.EventRSSI = &v
	}
	return d
}

// eventDevice is the narrow device update implied by one event.
func eventDevice(p *models.ParsedEvent, companyID string, accountID *string) *models.Device {
	return &models.Device{
		DeviceID:      p.DeviceID,
		SerialNumber:  p.SerialNumber,
		IMEI:          optional(p.IMEI),
		CompanyID:     &companyID,
		AccountID:     accountID,
		LastEventTime: p.EventTimestamp,
	}
}

// financialTime is the instant a financial event is booked at: the device
// timestamp, else the report timestamp.
func financialTime(p *models.ParsedEvent) *time.Time {
	if p.EventTimestamp != nil {
		return p.EventTimestamp
	}
	return p.ReportTimestamp
}

func floatPtr(f models.FlexString) *float64 {
	v, ok := f.Float()
	if !ok {
		return nil
	}
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
