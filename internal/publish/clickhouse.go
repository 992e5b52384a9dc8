// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package publish

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// AnalyticsSinkName labels the ClickHouse sink in metrics and logs.
const AnalyticsSinkName = "clickhouse"

// identifierPattern restricts database and table names that are spliced
// into DDL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const factTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	event_uuid         String,
	row_id             Int64,
	device_id          String,
	imei               Nullable(String),
	company_id         LowCardinality(String),
	account_id         Nullable(String),
	event_type         Nullable(String),
	event_id           Nullable(String),
	event_entry        Nullable(String),
	parsed_amount      Nullable(Float64),
	parsed_status      Nullable(String),
	is_door_event      Bool,
	is_cash_box_event  Bool,
	is_financial_event Bool,
	severity           LowCardinality(String),
	event_timestamp    Nullable(DateTime64(3, 'UTC')),
	report_timestamp   Nullable(DateTime64(3, 'UTC')),
	sync_id            String,
	sync_type          LowCardinality(String),
	ingested_at        DateTime64(3, 'UTC')
) ENGINE = MergeTree
PARTITION BY toYYYYMM(ingested_at)
ORDER BY (company_id, device_id, row_id)`

// ClickHouseSink mirrors newly stored events into a ClickHouse fact table.
type ClickHouseSink struct {
	conn  driver.Conn
	table string
	now   func() time.Time
}

// NewClickHouseSink connects, pings and creates the fact table if absent.
func NewClickHouseSink(ctx context.Context, cfg *config.AnalyticsConfig) (*ClickHouseSink, error) {
	table, err := qualifiedTable(cfg.Database, cfg.Table)
	if err != nil {
		return nil, err
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addrs,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		DialTimeout:  10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, fmt.Sprintf(factTableDDL, table)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create %s: %w", table, err)
	}

	return &ClickHouseSink{conn: conn, table: table, now: time.Now}, nil
}

// qualifiedTable validates and joins the database and table names.
func qualifiedTable(database, table string) (string, error) {
	if !identifierPattern.MatchString(table) {
		return "", fmt.Errorf("invalid analytics table name %q", table)
	}
	if database == "" {
		return table, nil
	}
	if !identifierPattern.MatchString(database) {
		return "", fmt.Errorf("invalid analytics database name %q", database)
	}
	return database + "." + table, nil
}

// Name implements ingest.Sink.
func (s *ClickHouseSink) Name() string {
	return AnalyticsSinkName
}

// Publish appends every event of b in one batch insert.
func (s *ClickHouseSink) Publish(ctx context.Context, b *ingest.Batch) (int, error) {
	if len(b.Events) == 0 {
		return 0, nil
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+s.table)
	if err != nil {
		return 0, fmt.Errorf("prepare analytics batch: %w", err)
	}

	ingested := s.now().UTC()
	for i := range b.Events {
		if err := batch.Append(factRow(&b.Events[i], b, ingested)...); err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("append event %s: %w", b.Events[i].EventUUID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send analytics batch: %w", err)
	}
	return len(b.Events), nil
}

// factRow lists the column values of one event in table order.
func factRow(ne *models.NewEvent, b *ingest.Batch, ingested time.Time) []any {
	e := &ne.Event
	return []any{
		ne.EventUUID,
		e.RowID,
		e.DeviceID,
		optional(e.IMEI),
		ne.CompanyID,
		ne.AccountID,
		optional(e.EventType),
		optional(e.EventID),
		optional(e.EventEntry),
		e.ParsedAmount,
		e.ParsedStatus,
		e.IsDoorEvent,
		e.IsCashBoxEvent,
		e.IsFinancialEvent,
		string(e.Severity),
		e.EventTimestamp,
		e.ReportTimestamp,
		b.SyncID,
		b.SyncType,
		ingested,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Close closes the ClickHouse connection.
func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
