// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package validation

import (
	"strings"
	"testing"
)

type listRequest struct {
	CompanyID string `query:"company_id" validate:"omitempty,identifier"`
	From      string `query:"from" validate:"omitempty,dateonly"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

type windowRequest struct {
	AccountID string `json:"account_id" validate:"omitempty,identifier"`
	Start     string `json:"start" validate:"required,rfc3339"`
	End       string `json:"end" validate:"required,rfc3339"`
}

type ackRequest struct {
	AcknowledgedBy string `json:"acknowledged_by" validate:"required,max=100"`
	Internal       string `json:"-" validate:"omitempty,oneof=a b"`
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"empty list request", &listRequest{}},
		{"full list request", &listRequest{CompanyID: "ACME-01", From: "2024-03-10", Limit: 1000}},
		{"device style id", &listRequest{CompanyID: "acct:42.sub_1"}},
		{"window", &windowRequest{Start: "2024-03-01T00:00:00Z", End: "2024-03-02T00:00:00+02:00"}},
		{"window with account", &windowRequest{AccountID: "ACME", Start: "2024-03-01T00:00:00Z", End: "2024-03-02T00:00:00Z"}},
		{"ack", &ackRequest{AcknowledgedBy: "operator"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{"limit too high", &listRequest{Limit: 1001}, "limit", "max"},
		{"negative limit", &listRequest{Limit: -1}, "limit", "min"},
		{"bad company id", &listRequest{CompanyID: "ACME; DROP"}, "company_id", "identifier"},
		{"bad date", &listRequest{From: "10/03/2024"}, "from", "dateonly"},
		{"missing start", &windowRequest{End: "2024-03-02T00:00:00Z"}, "start", "required"},
		{"date-only start", &windowRequest{Start: "2024-03-01", End: "2024-03-02T00:00:00Z"}, "start", "rfc3339"},
		{"missing acknowledger", &ackRequest{}, "acknowledged_by", "required"},
		{"long acknowledger", &ackRequest{AcknowledgedBy: strings.Repeat("x", 101)}, "acknowledged_by", "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on %s with tag %s, got: %v", tt.wantField, tt.wantTag, err)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&listRequest{Limit: 5000})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("Code = %q, want %q", apiErr.Code, CodeValidation)
	}
	if apiErr.Message != "limit must be at most 1000" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "limit" || apiErr.Details["tag"] != "max" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&windowRequest{AccountID: "bad id"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %#v", apiErr.Details["fields"])
	}
	for _, want := range []string{"account_id", "start is required", "end is required"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q does not mention %q", apiErr.Message, want)
		}
	}
}

func TestNew(t *testing.T) {
	err := New("end", "after", "end must be after start", "2024-01-01T00:00:00Z")
	if err.Error() != "end must be after start" {
		t.Errorf("Error() = %q", err.Error())
	}
	apiErr := err.ToAPIError()
	if apiErr.Details["tag"] != "after" || apiErr.Details["value"] != "2024-01-01T00:00:00Z" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestRequestValidationError_Empty(t *testing.T) {
	var err RequestValidationError
	if err.Error() != "validation failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.ToAPIError().Message != "Validation failed" {
		t.Errorf("ToAPIError().Message = %q", err.ToAPIError().Message)
	}
}
