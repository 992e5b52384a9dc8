// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockScheduler fails its first failUntil starts.
type mockScheduler struct {
	starts    atomic.Int32
	stops     atomic.Int32
	failUntil int32
	stopErr   error
}

func (m *mockScheduler) Start(context.Context) error {
	if m.starts.Add(1) <= m.failUntil {
		return errors.New("simulated start failure")
	}
	return nil
}

func (m *mockScheduler) Stop() error {
	m.stops.Add(1)
	return m.stopErr
}

func waitFor(cond func() bool) bool {
	for i := 0; i < 50; i++ {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestSchedulerServiceInterface(t *testing.T) {
	var _ suture.Service = (*SchedulerService)(nil)
}

func TestSchedulerService(t *testing.T) {
	t.Run("starts and stops the scheduler", func(t *testing.T) {
		sched := &mockScheduler{}
		svc := NewSchedulerService(sched)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		if !waitFor(func() bool { return sched.starts.Load() == 1 }) {
			t.Fatal("scheduler was not started")
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("service did not stop in time")
		}
		if sched.stops.Load() != 1 {
			t.Errorf("stops = %d, want 1", sched.stops.Load())
		}
	})

	t.Run("returns start error", func(t *testing.T) {
		sched := &mockScheduler{failUntil: 1}
		err := NewSchedulerService(sched).Serve(context.Background())
		if err == nil {
			t.Fatal("Serve() error = nil")
		}
		if sched.stops.Load() != 0 {
			t.Error("Stop called after failed Start")
		}
	})

	t.Run("returns stop error", func(t *testing.T) {
		stopErr := errors.New("stop failed")
		svc := NewSchedulerService(&mockScheduler{stopErr: stopErr})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, stopErr) {
			t.Errorf("Serve() = %v, want %v", err, stopErr)
		}
	})

	t.Run("String", func(t *testing.T) {
		if got := NewSchedulerService(&mockScheduler{}).String(); got != "sync-scheduler" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestSchedulerService_RestartedBySupervisor(t *testing.T) {
	sched := &mockScheduler{failUntil: 2}
	sup := suture.New("sync-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(NewSchedulerService(sched))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	if !waitFor(func() bool { return sched.starts.Load() >= 3 }) {
		t.Errorf("starts = %d, want at least 3", sched.starts.Load())
	}
	cancel()
	<-errCh
}
