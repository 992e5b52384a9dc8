// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
)

type closingSink interface {
	ingest.Sink
	io.Closer
}

// Set holds the sinks built from configuration.
type Set struct {
	sinks []closingSink
}

// NewSet builds the alert sink selected by cfg.Alerts.Driver and, when
// enabled, the ClickHouse analytics sink. Already built sinks are closed if
// a later one fails.
func NewSet(ctx context.Context, cfg *config.Config) (*Set, error) {
	s := &Set{}

	switch cfg.Alerts.Driver {
	case config.AlertsNone:
	case config.AlertsNATS:
		sink, err := NewNATSAlertSink(&cfg.Alerts)
		if err != nil {
			return nil, err
		}
		s.sinks = append(s.sinks, sink)
	case config.AlertsAMQP:
		sink, err := NewAMQPAlertSink(&cfg.Alerts)
		if err != nil {
			return nil, err
		}
		s.sinks = append(s.sinks, sink)
	default:
		return nil, fmt.Errorf("unknown alerts driver %q", cfg.Alerts.Driver)
	}

	if cfg.Analytics.Enabled {
		sink, err := NewClickHouseSink(ctx, &cfg.Analytics)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.sinks = append(s.sinks, sink)
	}

	for _, sink := range s.sinks {
		logging.Info().Str("sink", sink.Name()).Msg("Post-commit sink enabled")
	}
	return s, nil
}

// Sinks returns the sinks for ingest.NewOrchestrator.
func (s *Set) Sinks() []ingest.Sink {
	out := make([]ingest.Sink, len(s.sinks))
	for i, sink := range s.sinks {
		out[i] = sink
	}
	return out
}

// Len reports how many sinks are configured.
func (s *Set) Len() int {
	return len(s.sinks)
}

// Close closes every sink and joins their errors.
func (s *Set) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s sink: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
