// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package classifier turns raw telemetry events into structured ParsedEvents.
//
// Classify is a pure function. It never fails: malformed input becomes nil
// fields or false flags, and every event gets a severity.
//
// Rules applied to the free-text entry (case-insensitive):
//
//   - amount: first "$" followed by a number such as "$1,250.75"
//   - status: the entry lowercased with non-alphanumeric runs replaced by "_"
//   - door: "door open", "door closed", "main door", "upper door",
//     "belly door", "cash door"
//   - cash box: "cash box removed", "cash box inserted"
//   - financial: event id "Money Added", or any "$" in the entry
//   - severity: "Money Added" is normal; "door open" or "cash box removed"
//     is critical; everything else is info
package classifier
