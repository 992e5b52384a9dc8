// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

// Package query builds parameterized SQL WHERE clauses for the database
// package.
//
// Placeholders are numbered ($1, $2, ...) so the same text runs on DuckDB and
// PostgreSQL. A value bound once through Placeholder may be referenced more
// than once in a clause:
//
//	wb := query.NewWhereBuilder()
//	wb.AddEqual("de.company_id", companyID)
//	wb.AddAnyEqual([]string{"de.device_id", "de.imei", "de.serial_number"}, device)
//	q := "SELECT ... FROM device_events de " + wb.Where() +
//	    " ORDER BY de.event_timestamp DESC LIMIT " + wb.Placeholder(limit)
//	rows, err := conn.QueryContext(ctx, q, wb.Args()...)
//
// Empty string values and nil times are skipped, so optional filters need no
// branching at the call site.
package query
