// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package ingest

import (
	"context"
	"time"

	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/metrics"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// sinkTimeout bounds each sink's Publish call.
const sinkTimeout = 30 * time.Second

// Batch is what one committed cycle hands to its sinks.
type Batch struct {
	SyncID   string
	SyncType string
	Account  string
	Events   []models.NewEvent
	Alerts   []models.AlertNotification

	// Devices is how many device rows the cycle upserted.
	Devices int
}

// Empty reports whether the cycle changed nothing.
func (b *Batch) Empty() bool {
	return len(b.Events) == 0 && len(b.Alerts) == 0 && b.Devices == 0
}

// Sink receives committed cycle output. Publish returns how many records it
// handled, for metrics.
type Sink interface {
	Name() string
	Publish(ctx context.Context, b *Batch) (int, error)
}

// publish fans the batch out to every sink in order. Failures are logged and
// counted only.
func (o *Orchestrator) publish(ctx context.Context, b *Batch) {
	if b.Empty() {
		return
	}
	for _, s := range o.sinks {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		n, err := s.Publish(sctx, b)
		cancel()

		metrics.RecordSinkPublish(s.Name(), n, err)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("sink", s.Name()).
				Int("events", len(b.Events)).
				Int("alerts", len(b.Alerts)).
				Msg("Sink publish failed")
			continue
		}
		logging.Ctx(ctx).Debug().Str("sink", s.Name()).Int("records", n).Msg("Sink publish completed")
	}
}

// notification builds the published form of an alert raised for ne.
func notification(ne *models.NewEvent, a *models.ActiveAlert) models.AlertNotification {
	return models.AlertNotification{
		EventUUID:      ne.EventUUID,
		RowID:          ne.Event.RowID,
		DeviceID:       a.DeviceID,
		CompanyID:      ne.CompanyID,
		AlertType:      a.AlertType,
		Severity:       a.Severity,
		EventEntry:     ne.Event.EventEntry,
		EventTimestamp: ne.Event.EventTimestamp,
		RaisedAt:       a.CreatedAt,
	}
}
