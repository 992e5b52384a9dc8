// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/ingest"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/models"
)

// DefaultInterval is the periodic cycle period when none is configured.
const DefaultInterval = 15 * time.Minute

var (
	// ErrSchedulerStopped is returned for on-demand runs after Stop.
	ErrSchedulerStopped = errors.New("scheduler stopped")

	// ErrInvalidWindow is returned when a backfill window ends before it
	// starts.
	ErrInvalidWindow = errors.New("window start is after window end")
)

// Runner runs one ingestion cycle. Implemented by *ingest.Orchestrator.
type Runner interface {
	RunSync(ctx context.Context, req ingest.SyncRequest) (*ingest.SyncResult, error)
}

// Status is a snapshot of the scheduler for health reporting.
type Status struct {
	Running     bool               `json:"running"`
	Interval    time.Duration      `json:"interval_ns"`
	LastRun     time.Time          `json:"last_run,omitempty"`
	LastSuccess time.Time          `json:"last_success,omitempty"`
	LastError   string             `json:"last_error,omitempty"`
	LastResult  *ingest.SyncResult `json:"last_result,omitempty"`
}

// Scheduler runs periodic and on-demand sync cycles.
//
// Lifecycle:
//  1. NewScheduler returns a stopped scheduler. RunOnce and RunWindow
//     already work.
//  2. Start arms the timer and, with run_on_start, runs a cycle right away.
//  3. Each tick runs one periodic cycle with exponential-backoff retry.
//     Backfills and RunOnce are never retried.
//  4. Stop disarms the timer, waits for the in-flight cycle and rejects
//     further on-demand runs until Start is called again.
//
// At most one cycle runs at a time, whatever triggered it. Cycles run on a
// context detached from the caller, so an HTTP client hanging up does not
// roll back a half-applied cycle.
type Scheduler struct {
	runner        Runner
	interval      time.Duration
	runOnStart    bool
	retryAttempts int
	retryDelay    time.Duration

	mu          sync.RWMutex // protects the fields below
	running     bool
	stopped     bool
	stopChan    chan struct{}
	lastRun     time.Time
	lastSuccess time.Time
	lastErr     error
	lastResult  *ingest.SyncResult

	cycleMu sync.Mutex // serializes cycles
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(runner Runner, cfg *config.SyncConfig) *Scheduler {
	s := &Scheduler{
		runner:        runner,
		interval:      cfg.Interval,
		runOnStart:    cfg.RunOnStart,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.retryAttempts < 1 {
		s.retryAttempts = 1
	}
	return s
}

// Start arms the periodic timer. Calling Start while armed is a no-op. The
// timer also stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logging.Debug().Msg("Scheduler already running")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.running = true
	s.stopped = false
	s.stopChan = make(chan struct{})

	s.wg.Add(1)
	go s.loop(ctx, s.stopChan)

	logging.Info().
		Dur("interval", s.interval).
		Bool("run_on_start", s.runOnStart).
		Int("retry_attempts", s.retryAttempts).
		Msg("Sync scheduler started")
	return nil
}

// Stop disarms the timer and waits for an in-flight cycle to finish.
// Further on-demand runs fail with ErrSchedulerStopped until the next
// Start. Stop is idempotent.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	s.stopped = true
	wasRunning := s.running
	if wasRunning {
		s.running = false
		close(s.stopChan)
	}
	s.mu.Unlock()

	if wasRunning {
		logging.Info().Msg("Stopping sync scheduler...")
		s.wg.Wait()
	}

	// Cycles acquiring cycleMu after this point see stopped and bail out.
	s.cycleMu.Lock()
	s.cycleMu.Unlock() //nolint:staticcheck // empty critical section waits for the in-flight cycle

	if wasRunning {
		logging.Info().Msg("Sync scheduler stopped")
	}
	return nil
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Status returns the scheduler state and the outcome of the last cycle.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Running:     s.running,
		Interval:    s.interval,
		LastRun:     s.lastRun,
		LastSuccess: s.lastSuccess,
		LastResult:  s.lastResult,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// RunOnce runs a periodic-type cycle for the configured account now,
// without retry.
func (s *Scheduler) RunOnce(ctx context.Context) (*ingest.SyncResult, error) {
	if s.isStopped() {
		return nil, ErrSchedulerStopped
	}
	return s.runCycle(ctx, ingest.SyncRequest{SyncType: models.SyncTypeEvents})
}

// RunWindow runs a one-shot backfill for [start, end). An empty account
// uses the configured one. Backfills are never retried.
func (s *Scheduler) RunWindow(ctx context.Context, account string, start, end *time.Time) (*ingest.SyncResult, error) {
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidWindow
	}
	if s.isStopped() {
		return nil, ErrSchedulerStopped
	}
	return s.runCycle(ctx, ingest.SyncRequest{
		SyncType: models.SyncTypeEventsWindow,
		Account:  account,
		Start:    start,
		End:      end,
	})
}

func (s *Scheduler) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

// loop drives periodic cycles until stop is closed or ctx is done.
func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	if s.runOnStart {
		s.runPeriodic(ctx, stop)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.runPeriodic(ctx, stop)
		}
	}
}

// runPeriodic runs one periodic cycle with retry. Errors end up in the sync
// log and Status; the timer keeps going either way.
func (s *Scheduler) runPeriodic(ctx context.Context, stop <-chan struct{}) {
	delay := s.retryDelay

	for attempt := 1; ; attempt++ {
		_, err := s.runCycle(ctx, ingest.SyncRequest{SyncType: models.SyncTypeEvents})
		if err == nil || errors.Is(err, ErrSchedulerStopped) {
			return
		}
		if attempt >= s.retryAttempts {
			logging.Error().Err(err).Int("attempts", attempt).Msg("Periodic sync failed, waiting for next tick")
			return
		}

		logging.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", s.retryAttempts).
			Dur("delay", delay).
			Msg("Periodic sync failed, retrying")

		select {
		case <-time.After(delay):
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
		delay *= 2
	}
}

// runCycle runs one cycle under the cycle lock on a context detached from
// caller cancellation. Stopped is checked again once the lock is held, since
// Stop may have drained cycleMu while this caller waited for it.
func (s *Scheduler) runCycle(ctx context.Context, req ingest.SyncRequest) (*ingest.SyncResult, error) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	if s.isStopped() {
		return nil, ErrSchedulerStopped
	}

	started := time.Now()
	res, err := s.runner.RunSync(context.WithoutCancel(ctx), req)

	s.mu.Lock()
	s.lastRun = started
	s.lastErr = err
	if err == nil {
		s.lastSuccess = started
		s.lastResult = res
	}
	s.mu.Unlock()

	return res, err
}
