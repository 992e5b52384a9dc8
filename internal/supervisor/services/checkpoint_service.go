// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/fleetwatch/internal/logging"
)

const checkpointTimeout = time.Minute

// Checkpointer is satisfied by *database.DB.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService folds the DuckDB WAL into the database file on a fixed
// interval. A failed checkpoint is logged and retried on the next tick.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	name     string
}

// NewCheckpointService checkpoints db every interval.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	return &CheckpointService{
		db:       db,
		interval: interval,
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service. With a non-positive interval it returns
// suture.ErrDoNotRestart at once.
func (s *CheckpointService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.checkpoint(ctx)
		}
	}
}

func (s *CheckpointService) checkpoint(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkpointTimeout)
	defer cancel()

	start := time.Now()
	if err := s.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Periodic checkpoint failed")
		return
	}
	logging.Debug().Dur("duration", time.Since(start)).Msg("Periodic checkpoint complete")
}

// String names the service in supervisor logs.
func (s *CheckpointService) String() string {
	return s.name
}
