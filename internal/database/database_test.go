// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO connections from
// many parallel tests can hang under CI resource pressure, so the slot is
// held for the whole test.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{
		Driver:    config.DriverDuckDB,
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("close: %v", err)
		}
	})
	return db
}

func ptr[T any](v T) *T { return &v }

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// withCycle runs fn in a cycle transaction and commits it.
func withCycle(t *testing.T, db *DB, fn func(ctx context.Context, tx *CycleTx)) {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginCycle(ctx)
	if err != nil {
		t.Fatalf("BeginCycle() error = %v", err)
	}
	defer func() { _ = tx.Rollback() }()
	fn(ctx, tx)
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func countRows(t *testing.T, db *DB, table string) int64 {
	t.Helper()
	var n int64
	if err := db.conn.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestNew_UnsupportedDriver(t *testing.T) {
	if _, err := New(&config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestNew_SchemaAndMigrations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v, err := db.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion() = %d, want %d", v, len(migrations))
	}

	history, err := db.MigrationHistory(ctx)
	if err != nil {
		t.Fatalf("MigrationHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].Name != "device_events_acknowledgement" {
		t.Errorf("unexpected history: %+v", history)
	}

	for _, table := range []string{"companies", "event_types", "devices", "device_events", "financial_summary", "active_alerts", "api_sync_logs"} {
		if n := countRows(t, db, table); n != 0 {
			t.Errorf("%s has %d rows, want 0", table, n)
		}
	}

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if db.Driver() != config.DriverDuckDB {
		t.Errorf("Driver() = %q", db.Driver())
	}
}

func TestNew_ReopenIsIdempotent(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "fleet.duckdb")
	cfg := &config.DatabaseConfig{Driver: config.DriverDuckDB, Path: path, Threads: 1}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if err := tx.EnsureCompany(ctx, "ACME", "Acme"); err != nil {
			t.Fatal(err)
		}
	})
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = New(cfg)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	defer db.Close()

	if n := countRows(t, db, "companies"); n != 1 {
		t.Errorf("companies = %d after reopen, want 1", n)
	}
	if v, _ := db.SchemaVersion(context.Background()); v != 1 {
		t.Errorf("SchemaVersion() = %d after reopen, want 1", v)
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultListLimit},
		{-5, DefaultListLimit},
		{10, 10},
		{MaxListLimit, MaxListLimit},
		{MaxListLimit + 1, MaxListLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEnsureCompany_FirstNameWins(t *testing.T) {
	db := setupTestDB(t)
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if err := tx.EnsureCompany(ctx, "ACME", "Acme Gaming"); err != nil {
			t.Fatal(err)
		}
		if err := tx.EnsureCompany(ctx, "ACME", "Renamed"); err != nil {
			t.Fatal(err)
		}
		if err := tx.EnsureCompany(ctx, "BETA", ""); err != nil {
			t.Fatal(err)
		}
	})

	var name string
	if err := db.conn.QueryRow(`SELECT name FROM companies WHERE company_id = 'ACME'`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Acme Gaming" {
		t.Errorf("name = %q, want first name", name)
	}
	if err := db.conn.QueryRow(`SELECT name FROM companies WHERE company_id = 'BETA'`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "BETA" {
		t.Errorf("empty name should fall back to id, got %q", name)
	}
}

func TestEnsureEventType(t *testing.T) {
	db := setupTestDB(t)
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		first := models.EventType{EventType: "Security", EventID: "Door", Category: models.CategorySecurity, Severity: models.SeverityCritical}
		second := models.EventType{EventType: "Security", EventID: "Door", Category: models.CategoryMisc, Severity: models.SeverityInfo}
		for _, et := range []models.EventType{first, second, {EventType: "", EventID: "x"}, {EventType: "y"}} {
			if err := tx.EnsureEventType(ctx, et); err != nil {
				t.Fatal(err)
			}
		}
	})

	if n := countRows(t, db, "event_types"); n != 1 {
		t.Fatalf("event_types = %d, want 1", n)
	}
	var category string
	if err := db.conn.QueryRow(`SELECT category FROM event_types`).Scan(&category); err != nil {
		t.Fatal(err)
	}
	if category != string(models.CategorySecurity) {
		t.Errorf("category = %q, first classification should win", category)
	}
}

func TestUpsertDevice_Coalesce(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		err := tx.UpsertDevice(ctx, &models.Device{
			DeviceID:     "SN1",
			SerialNumber: "SN1",
			IMEI:         ptr("111"),
			CompanyID:    ptr("ACME"),
			Nickname:     ptr("Lobby 1"),
			LastKnownLat: ptr(35.0),
			LastKnownLng: ptr(-80.5),
			EventRSSI:    ptr(int64(-70)),
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		err := tx.UpsertDevice(ctx, &models.Device{
			DeviceID:     "SN1",
			SerialNumber: "OTHER",
			Nickname:     ptr("Lobby 2"),
			City:         ptr("Charlotte"),
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	d, err := db.GetDevice(ctx, "SN1")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.LastKnownLat == nil || *d.LastKnownLat != 35.0 {
		t.Errorf("LastKnownLat = %v, want 35.0 kept", d.LastKnownLat)
	}
	if d.IMEI == nil || *d.IMEI != "111" {
		t.Errorf("IMEI = %v, want kept", d.IMEI)
	}
	if d.EventRSSI == nil || *d.EventRSSI != -70 {
		t.Errorf("EventRSSI = %v, want -70", d.EventRSSI)
	}
	if d.Nickname == nil || *d.Nickname != "Lobby 2" {
		t.Errorf("Nickname = %v, want updated", d.Nickname)
	}
	if d.City == nil || *d.City != "Charlotte" {
		t.Errorf("City = %v, want set", d.City)
	}
	if d.SerialNumber != "SN1" {
		t.Errorf("SerialNumber = %q, must not change", d.SerialNumber)
	}
}

func TestUpsertDevice_LastEventTimeMonotonic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	later := ts("2024-03-10T12:00:00Z")
	earlier := ts("2024-03-09T12:00:00Z")
	latest := ts("2024-03-11T00:00:00Z")

	steps := []struct {
		in   *time.Time
		want *time.Time
	}{
		{nil, nil},
		{&later, &later},
		{&earlier, &later},
		{nil, &later},
		{&latest, &latest},
	}

	for i, step := range steps {
		withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
			if err := tx.UpsertDevice(ctx, &models.Device{DeviceID: "SN1", LastEventTime: step.in}); err != nil {
				t.Fatal(err)
			}
		})
		d, err := db.GetDevice(ctx, "SN1")
		if err != nil {
			t.Fatal(err)
		}
		switch {
		case step.want == nil && d.LastEventTime != nil:
			t.Errorf("step %d: LastEventTime = %v, want nil", i, d.LastEventTime)
		case step.want != nil && (d.LastEventTime == nil || !d.LastEventTime.Equal(*step.want)):
			t.Errorf("step %d: LastEventTime = %v, want %v", i, d.LastEventTime, step.want)
		}
	}
}

func TestUpsertDevice_EmptyID(t *testing.T) {
	db := setupTestDB(t)
	tx, err := db.BeginCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	if err := tx.UpsertDevice(context.Background(), &models.Device{}); err == nil {
		t.Error("expected error for empty device id")
	}
}

func newEvent(rowID int64, entry string, at *time.Time) *models.NewEvent {
	return &models.NewEvent{
		CompanyID: "ACME",
		AccountID: ptr("ACME"),
		Event: models.ParsedEvent{
			RowID:          rowID,
			RowIDValid:     true,
			DeviceID:       "SN1",
			SerialNumber:   "SN1",
			IMEI:           "111",
			EventType:      "Security",
			EventID:        "Door",
			EventEntry:     entry,
			IsDoorEvent:    true,
			EventTimestamp: at,
			Severity:       models.SeverityCritical,
		},
	}
}

func TestInsertEvent_IdempotentByRowID(t *testing.T) {
	db := setupTestDB(t)
	at := ts("2024-03-10T12:00:00Z")

	var firstUUID string
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		ne := newEvent(42, "Main Door Open", &at)
		inserted, err := tx.InsertEvent(ctx, ne)
		if err != nil {
			t.Fatal(err)
		}
		if !inserted {
			t.Error("first insert should report inserted")
		}
		if ne.EventUUID == "" {
			t.Error("EventUUID should be generated")
		}
		firstUUID = ne.EventUUID
	})

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		inserted, err := tx.InsertEvent(ctx, newEvent(42, "Main Door Open", &at))
		if err != nil {
			t.Fatal(err)
		}
		if inserted {
			t.Error("duplicate row id should not insert")
		}
	})

	if n := countRows(t, db, "device_events"); n != 1 {
		t.Errorf("device_events = %d, want 1", n)
	}
	e, err := db.GetEvent(context.Background(), firstUUID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if e.RowID != 42 || !e.IsDoorEvent || e.Severity != models.SeverityCritical {
		t.Errorf("unexpected stored event: %+v", e)
	}
	if e.EventTimestamp == nil || !e.EventTimestamp.Equal(at) {
		t.Errorf("EventTimestamp = %v, want %v", e.EventTimestamp, at)
	}
}

func TestAddFinancial_SumsInAnyOrder(t *testing.T) {
	db := setupTestDB(t)
	day := ts("2024-03-10T00:00:00Z")
	times := []time.Time{ts("2024-03-10T15:00:00Z"), ts("2024-03-10T09:00:00Z"), ts("2024-03-10T23:59:00Z")}
	amounts := []float64{20, 125.5, 4.5}

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		for i := range amounts {
			if err := tx.AddFinancial(ctx, "SN1", "ACME", day, amounts[i], &times[i]); err != nil {
				t.Fatal(err)
			}
		}
		if err := tx.AddFinancial(ctx, "SN1", "ACME", day.AddDate(0, 0, 1), 1, nil); err != nil {
			t.Fatal(err)
		}
	})

	from := day
	to := day
	summaries, err := db.ListFinancialSummaries(context.Background(), FinancialFilter{DeviceID: "SN1", From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListFinancialSummaries() error = %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.TotalCashIn != 150 {
		t.Errorf("TotalCashIn = %v, want 150", s.TotalCashIn)
	}
	if s.TransactionCount != 3 {
		t.Errorf("TransactionCount = %d, want 3", s.TransactionCount)
	}
	if s.LastTransactionTime == nil || !s.LastTransactionTime.Equal(times[2]) {
		t.Errorf("LastTransactionTime = %v, want %v", s.LastTransactionTime, times[2])
	}
	if got := s.SummaryDate.Format(time.DateOnly); got != "2024-03-10" {
		t.Errorf("SummaryDate = %s", got)
	}

	all, err := db.ListFinancialSummaries(context.Background(), FinancialFilter{CompanyID: "ACME"})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("len(all) = %d, want 2", len(all))
	}
	if all[0].SummaryDate.Before(all[1].SummaryDate) {
		t.Error("summaries should be newest day first")
	}
}

func TestInsertAlert_Once(t *testing.T) {
	db := setupTestDB(t)
	alert := &models.ActiveAlert{EventUUID: "uuid-1", DeviceID: "SN1", AlertType: "Door", Severity: models.SeverityCritical}

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		inserted, err := tx.InsertAlert(ctx, alert)
		if err != nil || !inserted {
			t.Fatalf("first InsertAlert() = %v, %v", inserted, err)
		}
		inserted, err = tx.InsertAlert(ctx, alert)
		if err != nil || inserted {
			t.Fatalf("second InsertAlert() = %v, %v", inserted, err)
		}
	})

	alerts, err := db.ListAlerts(context.Background(), AlertFilter{DeviceID: "SN1"})
	if err != nil {
		t.Fatalf("ListAlerts() error = %v", err)
	}
	if len(alerts) != 1 || alerts[0].AlertType != "Door" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestCycle_RollbackDiscards(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginCycle(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.EnsureCompany(ctx, "ACME", "Acme"); err != nil {
		t.Fatal(err)
	}
	if _, err := tx.InsertEvent(ctx, newEvent(1, "Door Open", nil)); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("second Rollback() should be a no-op, got %v", err)
	}

	if n := countRows(t, db, "companies"); n != 0 {
		t.Errorf("companies = %d after rollback", n)
	}
	if n := countRows(t, db, "device_events"); n != 0 {
		t.Errorf("device_events = %d after rollback", n)
	}
}

func TestListEvents_FiltersAndCategory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	t1 := ts("2024-03-10T10:00:00Z")
	t2 := ts("2024-03-10T11:00:00Z")

	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if err := tx.EnsureEventType(ctx, models.EventType{EventType: "Security", EventID: "Door", Category: models.CategorySecurity, Severity: models.SeverityCritical}); err != nil {
			t.Fatal(err)
		}
		if _, err := tx.InsertEvent(ctx, newEvent(1, "Door Open", &t1)); err != nil {
			t.Fatal(err)
		}
		if _, err := tx.InsertEvent(ctx, newEvent(2, "Door Closed", &t2)); err != nil {
			t.Fatal(err)
		}
		other := newEvent(3, "Clear/Print Receipt", nil)
		other.CompanyID = "BETA"
		other.Event.DeviceID = "SN2"
		other.Event.SerialNumber = "SN2"
		other.Event.IMEI = "222"
		other.Event.EventType = ""
		other.Event.EventID = ""
		if _, err := tx.InsertEvent(ctx, other); err != nil {
			t.Fatal(err)
		}
	})

	byIMEI, err := db.ListEvents(ctx, EventFilter{DeviceID: "111"})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(byIMEI) != 2 {
		t.Fatalf("len = %d, want 2", len(byIMEI))
	}
	if byIMEI[0].RowID != 2 {
		t.Errorf("first row = %d, want newest (2)", byIMEI[0].RowID)
	}
	if byIMEI[0].Category == nil || *byIMEI[0].Category != models.CategorySecurity {
		t.Errorf("Category = %v, want security", byIMEI[0].Category)
	}

	byCompany, err := db.ListEvents(ctx, EventFilter{CompanyID: "BETA"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byCompany) != 1 || byCompany[0].Category != nil {
		t.Errorf("byCompany = %+v", byCompany)
	}

	limited, err := db.ListEvents(ctx, EventFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}

func TestAcknowledgeEvent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	fixed := ts("2024-03-11T08:00:00Z")
	db.now = func() time.Time { return fixed }

	ne := newEvent(7, "Door Open", nil)
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if _, err := tx.InsertEvent(ctx, ne); err != nil {
			t.Fatal(err)
		}
	})

	if err := db.AcknowledgeEvent(ctx, ne.EventUUID, "operator"); err != nil {
		t.Fatalf("AcknowledgeEvent() error = %v", err)
	}
	e, err := db.GetEvent(ctx, ne.EventUUID)
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsAcknowledged || e.AcknowledgedBy == nil || *e.AcknowledgedBy != "operator" {
		t.Errorf("ack fields = %v %v", e.IsAcknowledged, e.AcknowledgedBy)
	}
	if e.AcknowledgedAt == nil || !e.AcknowledgedAt.Equal(fixed) {
		t.Errorf("AcknowledgedAt = %v, want %v", e.AcknowledgedAt, fixed)
	}

	if err := db.AcknowledgeEvent(ctx, "missing", "operator"); err != ErrNotFound {
		t.Errorf("AcknowledgeEvent(missing) = %v, want ErrNotFound", err)
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetDevice(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("GetDevice() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetEvent(context.Background(), "nope"); err != ErrNotFound {
		t.Errorf("GetEvent() error = %v, want ErrNotFound", err)
	}
}

func TestListDevices_CompanyFilter(t *testing.T) {
	db := setupTestDB(t)
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		for _, d := range []models.Device{
			{DeviceID: "B", CompanyID: ptr("ACME")},
			{DeviceID: "A", CompanyID: ptr("ACME")},
			{DeviceID: "C", CompanyID: ptr("BETA")},
		} {
			d := d
			if err := tx.UpsertDevice(ctx, &d); err != nil {
				t.Fatal(err)
			}
		}
	})

	devices, err := db.ListDevices(context.Background(), DeviceFilter{CompanyID: "ACME"})
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 2 || devices[0].DeviceID != "A" || devices[1].DeviceID != "B" {
		t.Errorf("devices = %+v", devices)
	}
	if devices[0].SerialNumber != "A" {
		t.Errorf("SerialNumber should default to device id, got %q", devices[0].SerialNumber)
	}
}

func TestSyncLogs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	older := &models.SyncLog{SyncType: models.SyncTypeEvents, AccountID: ptr("ACME"), RowsFetched: 10, Status: models.SyncStatusSuccess, DurationMS: 120, CreatedAt: ts("2024-03-10T10:00:00Z")}
	newer := &models.SyncLog{SyncType: models.SyncTypeEventsWindow, AccountID: ptr("ACME"), Status: models.SyncStatusFailed, ErrorMessage: ptr("boom"), DurationMS: 5, CreatedAt: ts("2024-03-10T11:00:00Z")}
	other := &models.SyncLog{SyncType: models.SyncTypeEvents, Status: models.SyncStatusSuccess}

	for _, l := range []*models.SyncLog{older, newer, other} {
		if err := db.InsertSyncLog(ctx, l); err != nil {
			t.Fatalf("InsertSyncLog() error = %v", err)
		}
		if l.SyncID == "" {
			t.Error("SyncID should be generated")
		}
	}

	logs, err := db.ListSyncLogs(ctx, SyncLogFilter{AccountID: "ACME"})
	if err != nil {
		t.Fatalf("ListSyncLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("len = %d, want 2", len(logs))
	}
	if logs[0].Status != models.SyncStatusFailed || logs[0].ErrorMessage == nil || *logs[0].ErrorMessage != "boom" {
		t.Errorf("newest log = %+v", logs[0])
	}
	if logs[1].RowsFetched != 10 || logs[1].DurationMS != 120 {
		t.Errorf("older log = %+v", logs[1])
	}

	windows, err := db.ListSyncLogs(ctx, SyncLogFilter{SyncType: models.SyncTypeEventsWindow})
	if err != nil {
		t.Fatal(err)
	}
	if len(windows) != 1 {
		t.Errorf("len(windows) = %d, want 1", len(windows))
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	withCycle(t, db, func(ctx context.Context, tx *CycleTx) {
		if err := tx.EnsureCompany(ctx, "ACME", ""); err != nil {
			t.Fatal(err)
		}
		if err := tx.UpsertDevice(ctx, &models.Device{DeviceID: "SN1"}); err != nil {
			t.Fatal(err)
		}
		if _, err := tx.InsertEvent(ctx, newEvent(1, "Door Open", nil)); err != nil {
			t.Fatal(err)
		}
	})

	s, err := db.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if s.Companies != 1 || s.Devices != 1 || s.Events != 1 || s.ActiveAlerts != 0 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.SchemaVersion != 1 {
		t.Errorf("SchemaVersion = %d, want 1", s.SchemaVersion)
	}
}
