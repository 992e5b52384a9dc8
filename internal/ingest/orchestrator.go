// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/fleetwatch/internal/classifier"
	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/metrics"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// Fetcher reads raw telemetry. Implemented by *telemetry.Client and
// *telemetry.CircuitBreakerClient.
type Fetcher interface {
	FetchEvents(ctx context.Context, account string, start, end *time.Time) ([]models.RawEvent, error)
	FetchDevices(ctx context.Context, account string, rowLimit int) ([]models.RawDevice, error)
}

// Store opens cycle transactions and records their outcome. Implemented by
// *database.DB.
type Store interface {
	BeginCycle(ctx context.Context) (*database.CycleTx, error)
	InsertSyncLog(ctx context.Context, l *models.SyncLog) error
}

// SyncRequest selects what one cycle ingests.
type SyncRequest struct {
	// SyncType tags the sync log; empty means models.SyncTypeEvents.
	SyncType string
	// Account overrides the configured account when set.
	Account string
	// Start and End bound the event window. Nil picks the client default.
	Start *time.Time
	End   *time.Time
}

// SyncResult summarizes a committed cycle.
type SyncResult struct {
	SyncID           string        `json:"sync_id"`
	SyncType         string        `json:"sync_type"`
	Account          string        `json:"account,omitempty"`
	EventsFetched    int           `json:"events_fetched"`
	DevicesFetched   int           `json:"devices_fetched"`
	DevicesUpserted  int           `json:"devices_upserted"`
	EventsInserted   int           `json:"events_inserted"`
	Duplicates       int           `json:"duplicates"`
	Rejected         int           `json:"rejected"`
	AlertsCreated    int           `json:"alerts_created"`
	FinancialUpdates int           `json:"financial_updates"`
	Duration         time.Duration `json:"duration_ns"`
}

func (r *SyncResult) counts() metrics.SyncCounts {
	return metrics.SyncCounts{
		Fetched:          r.EventsFetched,
		Inserted:         r.EventsInserted,
		Duplicates:       r.Duplicates,
		Rejected:         r.Rejected,
		Devices:          r.DevicesUpserted,
		AlertsCreated:    r.AlertsCreated,
		FinancialUpdates: r.FinancialUpdates,
	}
}

// Orchestrator runs sync cycles against one store.
//
// Each call to RunSync is one cycle:
//  1. Fetch devices and events concurrently. A fetch error ends the cycle
//     before anything is written.
//  2. Open a CycleTx and upsert the device snapshot.
//  3. Apply events in input order: classify, ensure company and event type,
//     narrow device update, insert, financial summary, alert.
//  4. Commit, or roll back on the first write error.
//  5. Record the outcome in the sync log, success or failure.
//  6. After a commit, hand the batch to every Sink.
//
// Sinks observe committed data only. A sink error is logged and counted but
// never changes the cycle's outcome.
//
// Example:
//
//	orch := ingest.NewOrchestrator(db, client, &cfg.Telemetry, alertSink)
//	res, err := orch.RunSync(ctx, ingest.SyncRequest{SyncType: models.SyncTypeEvents})
//
// Concurrent RunSync calls are not serialized here; the scheduler does that.
type Orchestrator struct {
	store          Store
	fetcher        Fetcher
	account        string
	deviceRowLimit int
	sinks          []Sink
	now            func() time.Time
}

// NewOrchestrator creates an Orchestrator. cfg supplies the default account
// and the device row limit; sinks run after each successful commit.
func NewOrchestrator(store Store, fetcher Fetcher, cfg *config.TelemetryConfig, sinks ...Sink) *Orchestrator {
	return &Orchestrator{
		store:          store,
		fetcher:        fetcher,
		account:        cfg.AccountID,
		deviceRowLimit: cfg.DeviceRowLimit,
		sinks:          sinks,
		now:            time.Now,
	}
}

// Account returns the configured default account.
func (o *Orchestrator) Account() string {
	return o.account
}

// RunSync performs one complete cycle. Either every write of the cycle is
// committed or none is; both outcomes are recorded in the sync log. The
// returned result is nil on error.
func (o *Orchestrator) RunSync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	res := &SyncResult{
		SyncID:   uuid.New().String(),
		SyncType: req.SyncType,
		Account:  req.Account,
	}
	if res.SyncType == "" {
		res.SyncType = models.SyncTypeEvents
	}
	if res.Account == "" {
		res.Account = o.account
	}

	ctx = logging.ContextWithCorrelationID(ctx, res.SyncID)
	logger := logging.Ctx(ctx).With().
		Str("sync_type", res.SyncType).
		Str("account", res.Account).
		Logger()
	started := o.now()

	devices, events, err := o.fetch(ctx, res.Account, req.Start, req.End)
	if err != nil {
		return nil, o.fail(ctx, &logger, res, started, err, metrics.ErrorTypeTelemetry)
	}
	res.DevicesFetched = len(devices)
	res.EventsFetched = len(events)

	batch, err := o.apply(ctx, &logger, res, devices, events)
	if err != nil {
		return nil, o.fail(ctx, &logger, res, started, err, metrics.ErrorTypeDatabase)
	}

	res.Duration = o.now().Sub(started)
	o.writeLog(ctx, &logger, res, models.SyncStatusSuccess, nil)
	metrics.RecordSyncCycle(res.SyncType, res.Duration, res.counts(), nil, "")

	logger.Info().
		Int("events_fetched", res.EventsFetched).
		Int("events_inserted", res.EventsInserted).
		Int("duplicates", res.Duplicates).
		Int("rejected", res.Rejected).
		Int("devices", res.DevicesUpserted).
		Int("alerts", res.AlertsCreated).
		Int("financial_updates", res.FinancialUpdates).
		Dur("duration", res.Duration).
		Msg("Sync cycle completed")

	o.publish(ctx, batch)
	return res, nil
}

// fetch loads the device snapshot and the event batch concurrently.
func (o *Orchestrator) fetch(ctx context.Context, account string, start, end *time.Time) ([]models.RawDevice, []models.RawEvent, error) {
	var (
		devices []models.RawDevice
		events  []models.RawEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		devices, err = o.fetcher.FetchDevices(gctx, account, o.deviceRowLimit)
		if err != nil {
			return fmt.Errorf("fetch devices: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		events, err = o.fetcher.FetchEvents(gctx, account, start, end)
		if err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return devices, events, nil
}

// apply writes one cycle inside a single transaction and returns what the
// sinks should see.
func (o *Orchestrator) apply(ctx context.Context, logger *zerolog.Logger, res *SyncResult, devices []models.RawDevice, events []models.RawEvent) (batch *Batch, err error) {
	tx, err := o.store.BeginCycle(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to roll back sync cycle")
		}
	}()

	for i := range devices {
		if err = o.applyDevice(ctx, tx, &devices[i], res); err != nil {
			return nil, err
		}
	}

	batch = &Batch{SyncID: res.SyncID, SyncType: res.SyncType, Account: res.Account}
	for i := range events {
		if err = o.applyEvent(ctx, logger, tx, &events[i], res, batch); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	batch.Devices = res.DevicesUpserted
	return batch, nil
}

func (o *Orchestrator) applyDevice(ctx context.Context, tx *database.CycleTx, raw *models.RawDevice, res *SyncResult) error {
	if !raw.Serial.Present() {
		return nil
	}
	if raw.AccountID.Present() {
		name := raw.AccountName.String()
		if !raw.AccountName.Present() {
			name = raw.AccountID.String()
		}
		if err := tx.EnsureCompany(ctx, raw.AccountID.String(), name); err != nil {
			return err
		}
	}
	if err := tx.UpsertDevice(ctx, deviceFromRaw(raw)); err != nil {
		return err
	}
	res.DevicesUpserted++
	return nil
}

func (o *Orchestrator) applyEvent(ctx context.Context, logger *zerolog.Logger, tx *database.CycleTx, raw *models.RawEvent, res *SyncResult, batch *Batch) error {
	parsed := classifier.Classify(*raw)
	if !parsed.RowIDValid || parsed.DeviceID == "" {
		res.Rejected++
		logger.Warn().
			Str("row_id", raw.RowID.String()).
			Str("serial", raw.Serial.String()).
			Msg("Skipping event without a numeric row id or serial")
		return nil
	}

	companyID := companyFor(raw.AccountID, res.Account)
	accountID := raw.AccountID.Ptr()

	if err := tx.EnsureCompany(ctx, companyID, companyID); err != nil {
		return err
	}
	err := tx.EnsureEventType(ctx, models.EventType{
		EventType: parsed.EventType,
		EventID:   parsed.EventID,
		Category:  parsed.Category(),
		Severity:  parsed.DefaultSeverity(),
	})
	if err != nil {
		return err
	}
	if err := tx.UpsertDevice(ctx, eventDevice(&parsed, companyID, accountID)); err != nil {
		return err
	}

	ne := models.NewEvent{CompanyID: companyID, AccountID: accountID, Event: parsed}
	inserted, err := tx.InsertEvent(ctx, &ne)
	if err != nil {
		return err
	}
	if !inserted {
		res.Duplicates++
		return nil
	}
	res.EventsInserted++
	batch.Events = append(batch.Events, ne)

	if parsed.IsFinancialEvent && parsed.ParsedAmount != nil {
		if at := financialTime(&parsed); at != nil {
			if err := tx.AddFinancial(ctx, parsed.DeviceID, companyID, *at, *parsed.ParsedAmount, at); err != nil {
				return err
			}
			res.FinancialUpdates++
		} else {
			logger.Debug().Int64("row_id", parsed.RowID).Msg("Financial event has no timestamp, summary not updated")
		}
	}

	if parsed.RaisesAlert() {
		alert := models.ActiveAlert{
			EventUUID: ne.EventUUID,
			DeviceID:  parsed.DeviceID,
			AlertType: parsed.AlertType(),
			Severity:  parsed.Severity,
			CreatedAt: o.now().UTC(),
		}
		created, err := tx.InsertAlert(ctx, &alert)
		if err != nil {
			return err
		}
		if created {
			res.AlertsCreated++
			batch.Alerts = append(batch.Alerts, notification(&ne, &alert))
		}
	}
	return nil
}

// fail records a failed cycle and returns cause.
func (o *Orchestrator) fail(ctx context.Context, logger *zerolog.Logger, res *SyncResult, started time.Time, cause error, errorType string) error {
	res.Duration = o.now().Sub(started)
	if errors.Is(cause, context.Canceled) {
		errorType = metrics.ErrorTypeCanceled
	}

	msg := cause.Error()
	o.writeLog(ctx, logger, res, models.SyncStatusFailed, &msg)
	metrics.RecordSyncCycle(res.SyncType, res.Duration, res.counts(), cause, errorType)

	logger.Error().Err(cause).
		Int("events_fetched", res.EventsFetched).
		Dur("duration", res.Duration).
		Msg("Sync cycle failed, rolled back")
	return cause
}

// writeLog appends the sync log. It ignores caller cancellation so a
// canceled cycle is still recorded.
func (o *Orchestrator) writeLog(ctx context.Context, logger *zerolog.Logger, res *SyncResult, status string, errMsg *string) {
	entry := &models.SyncLog{
		SyncID:       res.SyncID,
		SyncType:     res.SyncType,
		AccountID:    optional(res.Account),
		RowsFetched:  res.EventsFetched,
		Status:       status,
		ErrorMessage: errMsg,
		DurationMS:   res.Duration.Milliseconds(),
	}
	if err := o.store.InsertSyncLog(context.WithoutCancel(ctx), entry); err != nil {
		logger.Error().Err(err).Str("status", status).Msg("Failed to write sync log")
	}
}
