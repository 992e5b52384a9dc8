// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package validation validates HTTP request structs with
// go-playground/validator v10.
//
// A single validator is built on first use and reused, so struct metadata is
// cached across requests. Fields are reported by their json or query tag
// name. Besides the built-in tags, three custom tags are registered:
//
//   - identifier: account, company and device ids
//   - rfc3339: timestamps such as sync window bounds
//   - dateonly: YYYY-MM-DD query dates
//
// Failures convert to the VALIDATION_ERROR body of the API envelope:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, verr.ToAPIError())
//	    return
//	}
package validation
