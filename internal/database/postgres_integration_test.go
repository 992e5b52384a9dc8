// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/models"
	"github.com/tomtom215/fleetwatch/internal/testinfra"
)

func setupPostgresDB(t *testing.T) *DB {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg, err := testinfra.NewPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, context.Background(), pg) })

	db, err := New(&config.DatabaseConfig{
		Driver:       config.DriverPostgres,
		DSN:          pg.DSN,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("New(postgres) error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_CyclePortability(t *testing.T) {
	db := setupPostgresDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if v, err := db.SchemaVersion(ctx); err != nil || v != 1 {
		t.Fatalf("SchemaVersion() = %d, %v", v, err)
	}

	at := ts("2024-03-10T12:00:00Z")
	earlier := ts("2024-03-09T12:00:00Z")
	ne := newEvent(42, "Cash Box Removed - $125.50", &at)
	ne.Event.IsCashBoxEvent = true
	ne.Event.IsFinancialEvent = true
	ne.Event.ParsedAmount = ptr(125.5)

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if err := tx.EnsureCompany(ctx, "ACME", "Acme"); err != nil {
			t.Fatal(err)
		}
		if err := tx.UpsertDevice(ctx, &models.Device{DeviceID: "SN1", LastKnownLat: ptr(35.0), LastEventTime: &at}); err != nil {
			t.Fatal(err)
		}
		if err := tx.UpsertDevice(ctx, &models.Device{DeviceID: "SN1", LastEventTime: &earlier}); err != nil {
			t.Fatal(err)
		}
		inserted, err := tx.InsertEvent(ctx, ne)
		if err != nil || !inserted {
			t.Fatalf("InsertEvent() = %v, %v", inserted, err)
		}
		if err := tx.AddFinancial(ctx, "SN1", "ACME", at, 125.5, &at); err != nil {
			t.Fatal(err)
		}
		if _, err := tx.InsertAlert(ctx, &models.ActiveAlert{EventUUID: ne.EventUUID, DeviceID: "SN1", AlertType: "alert", Severity: models.SeverityCritical}); err != nil {
			t.Fatal(err)
		}
	})

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		inserted, err := tx.InsertEvent(ctx, newEvent(42, "dup", &at))
		if err != nil || inserted {
			t.Fatalf("duplicate InsertEvent() = %v, %v", inserted, err)
		}
	})

	d, err := db.GetDevice(ctx, "SN1")
	if err != nil {
		t.Fatal(err)
	}
	if d.LastKnownLat == nil || *d.LastKnownLat != 35.0 {
		t.Errorf("LastKnownLat = %v", d.LastKnownLat)
	}
	if d.LastEventTime == nil || !d.LastEventTime.Equal(at) {
		t.Errorf("LastEventTime = %v, want %v", d.LastEventTime, at)
	}

	sums, err := db.ListFinancialSummaries(ctx, FinancialFilter{From: &at, To: &at})
	if err != nil || len(sums) != 1 || sums[0].TotalCashIn != 125.5 {
		t.Errorf("summaries = %+v, %v", sums, err)
	}

	if err := db.AcknowledgeEvent(ctx, ne.EventUUID, "ops"); err != nil {
		t.Errorf("AcknowledgeEvent() error = %v", err)
	}
	events, err := db.ListEvents(ctx, EventFilter{DeviceID: "111"})
	if err != nil || len(events) != 1 || !events[0].IsAcknowledged {
		t.Errorf("events = %+v, %v", events, err)
	}

	if err := db.InsertSyncLog(ctx, &models.SyncLog{SyncType: models.SyncTypeEvents, Status: models.SyncStatusSuccess}); err != nil {
		t.Errorf("InsertSyncLog() error = %v", err)
	}
	logs, err := db.ListSyncLogs(ctx, SyncLogFilter{})
	if err != nil || len(logs) != 1 {
		t.Errorf("logs = %+v, %v", logs, err)
	}
}
