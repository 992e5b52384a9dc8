// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package classifier

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	zonePattern  = regexp.MustCompile(`(?i)(z|[+-]\d{2}:?\d{2})$`)
	digitPattern = regexp.MustCompile(`^\d+$`)
)

const (
	compactDateLen = len("20060102")

	// 100000000 seconds is March 1973; anything shorter is not a real epoch.
	minEpochDigits = 9
)

// Layouts for values that carry a zone designator.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999 -0700",
}

// Layouts for naive values, read as UTC after the first space becomes "T".
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Named-zone formats some gateways emit.
var fallbackLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp parses a provider timestamp into UTC. Values without a zone
// designator are UTC. Eight digits are a compact date (20060102). Longer
// digit-only values are Unix epoch seconds (up to 10 digits) or
// milliseconds; shorter ones are rejected. Unparseable input returns nil.
func ParseTimestamp(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if digitPattern.MatchString(s) {
		switch {
		case len(s) == compactDateLen:
			t, _ := parseLayouts(s, []string{"20060102"})
			return t
		case len(s) < minEpochDigits:
			return nil
		}
		return parseEpoch(s)
	}

	if zonePattern.MatchString(s) {
		if strings.HasSuffix(s, "z") {
			s = s[:len(s)-1] + "Z"
		}
		if t, ok := parseLayouts(s, zonedLayouts); ok {
			return t
		}
	} else {
		naive := strings.Replace(s, " ", "T", 1)
		if t, ok := parseLayouts(naive, naiveLayouts); ok {
			return t
		}
	}

	if t, ok := parseLayouts(s, fallbackLayouts); ok {
		return t
	}
	return nil
}

func parseLayouts(s string, layouts []string) (*time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, true
		}
	}
	return nil, false
}

func parseEpoch(s string) *time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	var t time.Time
	if len(s) <= 10 {
		t = time.Unix(n, 0).UTC()
	} else {
		t = time.UnixMilli(n).UTC()
	}
	return &t
}
