// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/logging"
)

// windowArgs is the parsed "window" command line.
type windowArgs struct {
	account    string
	start, end *time.Time
}

func parseWindowArgs(args []string) (*windowArgs, error) {
	if len(args) > 3 {
		return nil, fmt.Errorf("window takes at most 3 arguments, got %d", len(args))
	}
	arg := func(i int) string {
		if i < len(args) && args[i] != "-" {
			return args[i]
		}
		return ""
	}

	w := &windowArgs{account: arg(0)}
	var err error
	if w.start, err = parseBound(arg(1)); err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	if w.end, err = parseBound(arg(2)); err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}
	return w, nil
}

// parseBound accepts RFC3339 or a bare date at midnight UTC.
func parseBound(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%q is neither RFC3339 nor YYYY-MM-DD", s)
	}
	return &t, nil
}

func runWindow(ctx context.Context, cfg *config.Config, args []string) error {
	w, err := parseWindowArgs(args)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.scheduler.RunWindow(ctx, w.account, w.start, w.end)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	logging.Info().
		Str("sync_id", res.SyncID).
		Str("account", res.Account).
		Int("events_fetched", res.EventsFetched).
		Int("events_inserted", res.EventsInserted).
		Int("duplicates", res.Duplicates).
		Int("rejected", res.Rejected).
		Int("alerts_created", res.AlertsCreated).
		Dur("duration", res.Duration).
		Msg("Backfill complete")
	return nil
}
