// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package sync drives the ingestion orchestrator on a schedule.

A Scheduler owns its timer state, so several can coexist (tests create one
per case). It exposes three entry points:

  - Start arms the periodic timer. Each tick runs an "events" cycle over the
    client's default window for the configured account. A failed periodic
    cycle is retried with a doubling delay, up to sync.retry_attempts
    attempts in total; every attempt writes its own sync log.
  - RunOnce runs an "events" cycle immediately, without retry.
  - RunWindow runs an "events_window" backfill for an explicit window,
    without retry.

All cycles are serialized by one mutex, because the additive financial
summary is not safe under concurrent cycles. Cycles run on a context that
ignores caller cancellation; Stop waits for the in-flight cycle instead of
aborting it.

Usage:

	sched := sync.NewScheduler(orchestrator, &cfg.Sync)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	res, err := sched.RunWindow(ctx, "ACME", &start, &end)
*/
package sync
