// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package services

import (
	"context"
	"fmt"
)

// StartStopper is the lifecycle of *sync.Scheduler.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService runs the sync scheduler under supervision. Serve arms
// the scheduler, waits for cancellation and then stops it, which waits out
// an in-flight cycle.
type SchedulerService struct {
	scheduler StartStopper
	name      string
}

// NewSchedulerService wraps scheduler.
func NewSchedulerService(scheduler StartStopper) *SchedulerService {
	return &SchedulerService{
		scheduler: scheduler,
		name:      "sync-scheduler",
	}
}

// Serve implements suture.Service. A Start error is returned so suture
// restarts the service with backoff.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("sync scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("sync scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

// String names the service in supervisor logs.
func (s *SchedulerService) String() string {
	return s.name
}
