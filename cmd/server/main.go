// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/fleetwatch/internal/api"
	"github.com/tomtom215/fleetwatch/internal/config"
	"github.com/tomtom215/fleetwatch/internal/logging"
	"github.com/tomtom215/fleetwatch/internal/supervisor"
	"github.com/tomtom215/fleetwatch/internal/supervisor/services"
	"github.com/tomtom215/fleetwatch/internal/websocket"
)

// supervisorGrace is added to the HTTP shutdown timeout so the scheduler
// can finish an in-flight cycle.
const supervisorGrace = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("fleetwatch failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve", "window":
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stderr, "usage: fleetwatch [serve] | window [account] [start] [end]")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd == "window" {
		return runWindow(ctx, cfg, args)
	}
	return serve(ctx, cfg)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", api.Version).
		Str("db_driver", cfg.Database.Driver).
		Str("account_id", cfg.Telemetry.AccountID).
		Bool("sync_enabled", cfg.Sync.Enabled).
		Msg("Starting fleetwatch")

	hub := websocket.NewHub()
	p, err := newPipeline(ctx, cfg, hub)
	if err != nil {
		return err
	}
	defer p.Close()

	handler := api.NewHandler(p.db, p.scheduler, p.cache)
	if p.breaker != nil {
		handler.SetTelemetryBreaker(p.breaker)
	}
	handler.SetAlertStream(hub.Handler(cfg.Server.CORSOrigins))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, &cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	if cfg.Server.APIKey == "" {
		logging.Warn().Msg("API_KEY is not set; /api/v1 is open to anyone who can reach the port")
	}
	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + supervisorGrace,
	})
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	if cfg.Database.Driver == config.DriverDuckDB && cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewCheckpointService(p.db, cfg.Database.CheckpointInterval))
	}
	tree.AddMessagingService(hub)
	if cfg.Sync.Enabled {
		tree.AddMessagingService(services.NewSchedulerService(p.scheduler))
	} else {
		logging.Info().Msg("Periodic sync disabled (SYNC_ENABLED=false); manual runs remain available")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for services to stop...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Msg("fleetwatch stopped")
	return nil
}
