// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestFlexString_UnmarshalScalars(t *testing.T) {
	t.Parallel()

	body := `{
		"serial": "SN-1",
		"imei": 356938035643809,
		"accountid": null,
		"row_id": 42,
		"entry": "Cash Box Removed - $125.50",
		"eventid": true,
		"eventtype": {"nested": 1}
	}`

	var ev RawEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if ev.Serial.Value != "SN-1" || !ev.Serial.Valid {
		t.Errorf("Serial = %+v, want SN-1", ev.Serial)
	}
	if ev.IMEI.Value != "356938035643809" {
		t.Errorf("IMEI = %q, want numeric literal text", ev.IMEI.Value)
	}
	if ev.AccountID.Valid {
		t.Errorf("AccountID = %+v, want null", ev.AccountID)
	}
	if ev.RowID.Value != "42" {
		t.Errorf("RowID = %q, want 42", ev.RowID.Value)
	}
	if ev.EventID.Value != "true" {
		t.Errorf("EventID = %q, want true", ev.EventID.Value)
	}
	if ev.EventType.Valid {
		t.Errorf("EventType = %+v, objects should decode as absent", ev.EventType)
	}
	if ev.ReportTime.Valid {
		t.Errorf("missing ReportTime should be invalid")
	}
}

func TestFlexString_Helpers(t *testing.T) {
	t.Parallel()

	if FlexOf("").Ptr() != nil {
		t.Error("empty string Ptr() should be nil")
	}
	if p := FlexOf("x").Ptr(); p == nil || *p != "x" {
		t.Errorf("Ptr() = %v, want x", p)
	}

	if v, ok := FlexOf(" 35.25 ").Float(); !ok || v != 35.25 {
		t.Errorf("Float() = %v,%v want 35.25,true", v, ok)
	}
	if _, ok := FlexOf("abc").Float(); ok {
		t.Error("Float() on non-numeric should report false")
	}
	if v, ok := FlexOf("-71.9").Int(); !ok || v != -71 {
		t.Errorf("Int() = %v,%v want -71,true", v, ok)
	}
	if _, ok := (FlexString{}).Int(); ok {
		t.Error("Int() on null should report false")
	}
}

func TestFlexString_NonFiniteIsAbsent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-Infinity", "1e400"} {
		if v, ok := FlexOf(in).Float(); ok {
			t.Errorf("Float(%q) = %v,true want absent", in, v)
		}
		if v, ok := FlexOf(in).Int(); ok {
			t.Errorf("Int(%q) = %v,true want absent", in, v)
		}
	}

	if v, ok := FlexOf("1e19").Int(); ok {
		t.Errorf("Int(1e19) = %v,true want absent", v)
	}
	if v, ok := FlexOf("-42.0").Int(); !ok || v != -42 {
		t.Errorf("Int(-42.0) = %v,%v want -42,true", v, ok)
	}
}

func TestFlexString_MarshalJSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
	}{A: FlexOf("1"), B: FlexString{}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"a":"1","b":null}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestParsedEvent_DerivedFields(t *testing.T) {
	t.Parallel()

	status := "cash_box_removed"
	tests := []struct {
		name      string
		ev        ParsedEvent
		category  Category
		severity  Severity
		alert     bool
		alertType string
	}{
		{
			name:      "cash box removed",
			ev:        ParsedEvent{IsCashBoxEvent: true, IsFinancialEvent: true, Severity: SeverityCritical, ParsedStatus: &status},
			category:  CategoryFinancial,
			severity:  SeverityCritical,
			alert:     true,
			alertType: "cash_box_removed",
		},
		{
			name:      "door open with event id",
			ev:        ParsedEvent{IsDoorEvent: true, Severity: SeverityCritical, EventID: "Door Open"},
			category:  CategorySecurity,
			severity:  SeverityCritical,
			alert:     true,
			alertType: "Door Open",
		},
		{
			name:      "plain info",
			ev:        ParsedEvent{Severity: SeverityInfo},
			category:  CategoryMisc,
			severity:  SeverityInfo,
			alert:     false,
			alertType: "alert",
		},
		{
			name:     "critical but not security",
			ev:       ParsedEvent{Severity: SeverityCritical},
			category: CategoryMisc,
			severity: SeverityInfo,
			alert:    false,
			// no event id or status
			alertType: "alert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.ev.Category(); got != tt.category {
				t.Errorf("Category() = %v, want %v", got, tt.category)
			}
			if got := tt.ev.DefaultSeverity(); got != tt.severity {
				t.Errorf("DefaultSeverity() = %v, want %v", got, tt.severity)
			}
			if got := tt.ev.RaisesAlert(); got != tt.alert {
				t.Errorf("RaisesAlert() = %v, want %v", got, tt.alert)
			}
			if got := tt.ev.AlertType(); got != tt.alertType {
				t.Errorf("AlertType() = %q, want %q", got, tt.alertType)
			}
		})
	}
}
