// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/fleetwatch/internal/models"
)

// MoneyAddedEventID is the event id the provider uses for cash-in.
const MoneyAddedEventID = "Money Added"

var (
	amountPattern   = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	nonSlugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	doorPhrases     = []string{"door open", "door closed", "main door", "upper door", "belly door", "cash door"}
	cashBoxPhrases  = []string{"cash box removed", "cash box inserted"}
	criticalPhrases = []string{"door open", "cash box removed"}
)

// Classify derives a ParsedEvent from raw. The device id is the serial.
func Classify(raw models.RawEvent) models.ParsedEvent {
	entry := raw.Entry.Value
	lower := strings.ToLower(entry)
	eventID := raw.EventID.Value

	rowID, rowIDValid := ParseRowID(raw.RowID)

	return models.ParsedEvent{
		RowID:            rowID,
		RowIDValid:       rowIDValid,
		DeviceID:         raw.Serial.Value,
		IMEI:             raw.IMEI.Value,
		SerialNumber:     raw.Serial.Value,
		EventType:        raw.EventType.Value,
		EventID:          eventID,
		EventEntry:       entry,
		ParsedAmount:     ExtractAmount(entry),
		ParsedStatus:     NormalizeStatus(entry),
		IsDoorEvent:      containsAny(lower, doorPhrases),
		IsCashBoxEvent:   containsAny(lower, cashBoxPhrases),
		IsFinancialEvent: eventID == MoneyAddedEventID || strings.Contains(entry, "$"),
		EventTimestamp:   ParseTimestamp(raw.EventTimestamp.Value),
		ReportTimestamp:  ParseTimestamp(raw.ReportTime.Value),
		Severity:         severity(eventID, lower),
	}
}

// ExtractAmount returns the dollar amount in entry, or nil when there is no
// "$" or no number after it. Thousands separators are ignored.
func ExtractAmount(entry string) *float64 {
	if !strings.Contains(entry, "$") {
		return nil
	}
	m := amountPattern.FindStringSubmatch(entry)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// NormalizeStatus slugs entry: "Main Door Open!" becomes "main_door_open".
func NormalizeStatus(entry string) *string {
	s := strings.ToLower(strings.TrimSpace(entry))
	s = nonSlugPattern.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return nil
	}
	return &s
}

// ParseRowID parses a base-10 row id.
func ParseRowID(v models.FlexString) (int64, bool) {
	if !v.Present() {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func severity(eventID, lowerEntry string) models.Severity {
	if eventID == MoneyAddedEventID {
		return models.SeverityNormal
	}
	if containsAny(lowerEntry, criticalPhrases) {
		return models.SeverityCritical
	}
	return models.SeverityInfo
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
