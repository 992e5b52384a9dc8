// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomtom215/fleetwatch/internal/database/query"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// InsertSyncLog appends a cycle record. It runs outside any cycle
// transaction. Empty SyncID and zero CreatedAt are filled in.
func (db *DB) InsertSyncLog(ctx context.Context, l *models.SyncLog) error {
	if l.SyncID == "" {
		l.SyncID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = db.now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO api_sync_logs (sync_id, sync_type, account_id, rows_fetched, status, error_message, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.SyncID, l.SyncType, deref(l.AccountID), int64(l.RowsFetched), l.Status,
		deref(l.ErrorMessage), l.DurationMS, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sync log: %w", err)
	}
	return nil
}

// SyncLogFilter selects sync logs, newest first.
type SyncLogFilter struct {
	AccountID string
	SyncType  string
	Limit     int
}

// ListSyncLogs returns sync logs matching f.
func (db *DB) ListSyncLogs(ctx context.Context, f SyncLogFilter) ([]models.SyncLog, error) {
	wb := query.NewWhereBuilder()
	wb.AddEqual("account_id", f.AccountID)
	wb.AddEqual("sync_type", f.SyncType)

	q := `SELECT sync_id, sync_type, account_id, rows_fetched, status, error_message, duration_ms, created_at
		FROM api_sync_logs ` + wb.Where() + `
		ORDER BY created_at DESC, sync_id
		LIMIT ` + wb.Placeholder(clampLimit(f.Limit))

	rows, err := db.conn.QueryContext(ctx, q, wb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	logs := []models.SyncLog{}
	for rows.Next() {
		var l models.SyncLog
		var fetched int64
		if err := rows.Scan(&l.SyncID, &l.SyncType, &l.AccountID, &fetched, &l.Status,
			&l.ErrorMessage, &l.DurationMS, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		l.RowsFetched = int(fetched)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
