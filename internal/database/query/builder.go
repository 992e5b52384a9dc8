// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package query

import (
	"fmt"
	"strings"
	"time"
)

// WhereBuilder accumulates AND-joined conditions and their arguments.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty builder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// Placeholder binds v and returns its placeholder ("$n").
func (wb *WhereBuilder) Placeholder(v interface{}) string {
	wb.args = append(wb.args, v)
	return fmt.Sprintf("$%d", len(wb.args))
}

// AddClause adds a raw condition. Each "?" in clause is bound, in order, to
// the matching element of args.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	var sb strings.Builder
	next := 0
	for _, r := range clause {
		if r == '?' && next < len(args) {
			sb.WriteString(wb.Placeholder(args[next]))
			next++
			continue
		}
		sb.WriteRune(r)
	}
	wb.clauses = append(wb.clauses, sb.String())
	return wb
}

// AddEqual adds "column = $n". Empty values are skipped.
func (wb *WhereBuilder) AddEqual(column, value string) *WhereBuilder {
	if value == "" {
		return wb
	}
	wb.clauses = append(wb.clauses, column+" = "+wb.Placeholder(value))
	return wb
}

// AddAnyEqual matches value against any of columns with a single bound
// argument. Empty values are skipped.
func (wb *WhereBuilder) AddAnyEqual(columns []string, value string) *WhereBuilder {
	if value == "" || len(columns) == 0 {
		return wb
	}
	ph := wb.Placeholder(value)
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + " = " + ph
	}
	if len(parts) == 1 {
		wb.clauses = append(wb.clauses, parts[0])
	} else {
		wb.clauses = append(wb.clauses, "("+strings.Join(parts, " OR ")+")")
	}
	return wb
}

// AddTimeRange adds inclusive bounds on column. Nil bounds are skipped.
func (wb *WhereBuilder) AddTimeRange(column string, from, to *time.Time) *WhereBuilder {
	if from != nil {
		wb.clauses = append(wb.clauses, column+" >= "+wb.Placeholder(*from))
	}
	if to != nil {
		wb.clauses = append(wb.clauses, column+" <= "+wb.Placeholder(*to))
	}
	return wb
}

// AddDateRange bounds a DATE column by the calendar days of from and to,
// taken in UTC.
func (wb *WhereBuilder) AddDateRange(column string, from, to *time.Time) *WhereBuilder {
	if from != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s >= CAST(%s AS DATE)", column, wb.Placeholder(from.UTC().Format(time.DateOnly))))
	}
	if to != nil {
		wb.clauses = append(wb.clauses, fmt.Sprintf("%s <= CAST(%s AS DATE)", column, wb.Placeholder(to.UTC().Format(time.DateOnly))))
	}
	return wb
}

// Build returns the conditions joined by AND, or "1=1" when there are none,
// with the arguments bound so far.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", wb.args
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	where, args := wb.Build()
	return "WHERE " + where, args
}

// Where returns "WHERE ..." or an empty string when no conditions were
// added.
func (wb *WhereBuilder) Where() string {
	if len(wb.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(wb.clauses, " AND ")
}

// Args returns every bound argument, including those bound by Placeholder
// after the last condition.
func (wb *WhereBuilder) Args() []interface{} {
	return wb.args
}

// Count returns the number of conditions.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty reports whether no conditions were added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
