// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

import "time"

// Severity of a device event.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityNormal   Severity = "normal"
	SeverityInfo     Severity = "info"
)

// Category of an event type in the catalog.
type Category string

const (
	CategoryFinancial Category = "financial"
	CategorySecurity  Category = "security"
	CategoryMisc      Category = "misc"
)

// ParsedEvent is the classifier output for one RawEvent. Empty strings stand
// for absent source values.
type ParsedEvent struct {
	RowID      int64 `json:"row_id"`
	RowIDValid bool  `json:"-"`

	DeviceID     string `json:"device_id"` // serial
	IMEI         string `json:"imei,omitempty"`
	SerialNumber string `json:"serial_number"`
	EventType    string `json:"event_type,omitempty"`
	EventID      string `json:"event_id,omitempty"`
	EventEntry   string `json:"event_entry,omitempty"`

	ParsedAmount *float64 `json:"parsed_amount,omitempty"`
	ParsedStatus *string  `json:"parsed_status,omitempty"`

	IsDoorEvent      bool `json:"is_door_event"`
	IsCashBoxEvent   bool `json:"is_cash_box_event"`
	IsFinancialEvent bool `json:"is_financial_event"`

	EventTimestamp  *time.Time `json:"event_timestamp,omitempty"`
	ReportTimestamp *time.Time `json:"report_timestamp,omitempty"`

	Severity Severity `json:"severity"`
}

// IsSecurityEvent reports door or cash box activity.
func (p *ParsedEvent) IsSecurityEvent() bool {
	return p.IsDoorEvent || p.IsCashBoxEvent
}

// Category derives the catalog category: financial first, then security.
func (p *ParsedEvent) Category() Category {
	switch {
	case p.IsFinancialEvent:
		return CategoryFinancial
	case p.IsSecurityEvent():
		return CategorySecurity
	default:
		return CategoryMisc
	}
}

// DefaultSeverity is the severity recorded for a new catalog entry.
func (p *ParsedEvent) DefaultSeverity() Severity {
	if p.IsSecurityEvent() {
		return SeverityCritical
	}
	return SeverityInfo
}

// RaisesAlert reports whether a newly inserted event opens an ActiveAlert.
func (p *ParsedEvent) RaisesAlert() bool {
	return p.Severity == SeverityCritical && p.IsSecurityEvent()
}

// AlertType names the alert: event id, else status, else "alert".
func (p *ParsedEvent) AlertType() string {
	if p.EventID != "" {
		return p.EventID
	}
	if p.ParsedStatus != nil && *p.ParsedStatus != "" {
		return *p.ParsedStatus
	}
	return "alert"
}

// EventType is a catalog entry keyed by (EventType, EventID).
type EventType struct {
	EventType string   `json:"event_type"`
	EventID   string   `json:"event_id"`
	Category  Category `json:"category"`
	Severity  Severity `json:"severity"`
}

// StoredEvent is a persisted device event as returned by the read API.
type StoredEvent struct {
	EventUUID        string     `json:"event_uuid"`
	RowID            int64      `json:"row_id"`
	DeviceID         string     `json:"device_id"`
	IMEI             *string    `json:"imei,omitempty"`
	SerialNumber     *string    `json:"serial_number,omitempty"`
	CompanyID        string     `json:"company_id"`
	AccountID        *string    `json:"account_id,omitempty"`
	EventType        *string    `json:"event_type,omitempty"`
	EventID          *string    `json:"event_id,omitempty"`
	EventEntry       *string    `json:"event_entry,omitempty"`
	ParsedAmount     *float64   `json:"parsed_amount,omitempty"`
	ParsedStatus     *string    `json:"parsed_status,omitempty"`
	IsDoorEvent      bool       `json:"is_door_event"`
	IsFinancialEvent bool       `json:"is_financial_event"`
	IsCashBoxEvent   bool       `json:"is_cash_box_event"`
	EventTimestamp   *time.Time `json:"event_timestamp,omitempty"`
	ReportTimestamp  *time.Time `json:"report_timestamp,omitempty"`
	Severity         Severity   `json:"severity"`
	Category         *Category  `json:"category,omitempty"`
	IsAcknowledged   bool       `json:"is_acknowledged"`
	AcknowledgedBy   *string    `json:"acknowledged_by,omitempty"`
	AcknowledgedAt   *time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewEvent describes an event row inserted by a sync cycle. Sinks receive
// these after commit.
type NewEvent struct {
	EventUUID string      `json:"event_uuid"`
	CompanyID string      `json:"company_id"`
	AccountID *string     `json:"account_id,omitempty"`
	Event     ParsedEvent `json:"event"`
}
