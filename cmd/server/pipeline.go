// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/fleetwatch/internal/cache"
	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/database"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/publish"
	syncpkg "github.com/tomtom215/fleetwatch/internal/sync"
	"github.com/tomtom215/fleetwatch/internal/telemetry"
)

// pipeline is everything between the telemetry API and the store.
type pipeline struct {
	db        *database.DB
	sinks     *publish.Set
	cache     *cache.Cache
	breaker   *telemetry.CircuitBreakerClient // nil when the breaker is off
	scheduler *syncpkg.Scheduler
}

// newPipeline wires the store, fetcher, sinks and scheduler. extra sinks run
// after the configured ones.
func newPipeline(ctx context.Context, cfg *config.Config, extra ...ingest.Sink) (*pipeline, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	p := &pipeline{db: db}

	sinks, err := publish.NewSet(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to initialize sinks: %w", err)
	}
	p.sinks = sinks

	var fetcher ingest.Fetcher
	if cfg.Telemetry.CircuitBreaker {
		p.breaker = telemetry.NewCircuitBreakerClient(&cfg.Telemetry)
		fetcher = p.breaker
	} else {
		fetcher = telemetry.NewClient(&cfg.Telemetry)
	}

	all := append(sinks.Sinks(), extra...)
	p.cache = cache.New(cfg.Server.CacheTTL)
	if p.cache != nil {
		all = append(all, cache.NewInvalidator(p.cache))
	}

	orch := ingest.NewOrchestrator(db, fetcher, &cfg.Telemetry, all...)
	p.scheduler = syncpkg.NewScheduler(orch, &cfg.Sync)

	logging.Info().
		Str("db_driver", db.Driver()).
		Int("sinks", len(all)).
		Bool("circuit_breaker", p.breaker != nil).
		Msg("Ingestion pipeline ready")
	return p, nil
}

// Close releases the pipeline in reverse order of construction.
func (p *pipeline) Close() {
	p.cache.Close()
	if p.sinks != nil {
		if err := p.sinks.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing sinks")
		}
	}
	if err := p.db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
