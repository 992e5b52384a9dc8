// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString is a JSON scalar that may arrive as a string, number, boolean,
// or null. Numbers and booleans keep their literal text. Objects and arrays
// are treated as absent.
type FlexString struct {
	Value string
	Valid bool
}

// FlexOf returns a present FlexString.
func FlexOf(s string) FlexString {
	return FlexString{Value: s, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexString{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString{Value: s, Valid: true}
	case '{', '[':
		*f = FlexString{}
	default:
		*f = FlexString{Value: string(data), Valid: true}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexString) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

func (f FlexString) String() string {
	return f.Value
}

// Present reports whether the value is set and non-empty.
func (f FlexString) Present() bool {
	return f.Valid && f.Value != ""
}

// Ptr returns nil for null or empty values.
func (f FlexString) Ptr() *string {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

// Float parses the value as a float64. Blank, null, non-numeric, NaN and
// infinite values report false.
func (f FlexString) Float() (float64, bool) {
	if !f.Present() {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Int parses the value as an integer, truncating any fraction. Values
// outside the int64 range report false.
func (f FlexString) Int() (int64, bool) {
	if !f.Present() {
		return 0, false
	}
	if v, err := strconv.ParseInt(strings.TrimSpace(f.Value), 10, 64); err == nil {
		return v, true
	}
	v, ok := f.Float()
	if !ok || v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
