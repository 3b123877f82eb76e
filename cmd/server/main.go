// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

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

	"github.com/joho/godotenv"

	_ "github.com/tomtom215/focusguard/docs" // swagger spec for /swagger/*
	"github.com/tomtom215/focusguard/internal/api"
	"github.com/tomtom215/focusguard/internal/config"
	"github.com/tomtom215/focusguard/internal/database"
	"github.com/tomtom215/focusguard/internal/detection"
	"github.com/tomtom215/focusguard/internal/eventqueue"
	"github.com/tomtom215/focusguard/internal/logging"
	"github.com/tomtom215/focusguard/internal/monitor"
	"github.com/tomtom215/focusguard/internal/recorder"
	"github.com/tomtom215/focusguard/internal/supervisor"
	"github.com/tomtom215/focusguard/internal/supervisor/services"
	"github.com/tomtom215/focusguard/internal/wal"
	ws "github.com/tomtom215/focusguard/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_driver", cfg.Database.Driver).
		Bool("nats", cfg.NATS.Enabled).
		Bool("wal", cfg.WAL.Enabled).
		Msg("Starting FocusGuard")

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	err = run(ctx, cfg)
	cancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("FocusGuard failed")
	}
	logging.Info().Msg("FocusGuard stopped")
}

// run serves until ctx is canceled. It owns every resource it opens and
// closes them before returning, so main may exit on its error.
func run(ctx context.Context, cfg *config.Config) error {
	store, err := database.OpenStore(cfg.Database)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	rec := recorder.New(store)

	w, err := openWAL(cfg.WAL)
	if err != nil {
		return fmt.Errorf("open WAL: %w", err)
	}
	var queueWAL eventqueue.WAL
	if w != nil {
		queueWAL = w
		defer func() {
			if err := w.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing WAL")
			}
		}()
	}
	queue := eventqueue.New(eventqueue.ConfigFrom(cfg.Queue, cfg.WAL), rec, queueWAL)

	bus, err := openBus(cfg.NATS)
	if err != nil {
		return fmt.Errorf("open event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	hub := ws.NewHub()
	sink := monitor.NewFanoutSink(queue, bus)
	monitors := monitor.NewManager(cfg.Monitor, detection.ConfigFrom(cfg.Detection), sink)

	handler := api.NewHandler(rec, monitors, queue, bus, hub, cfg)
	monitors.OnReap(handler.ReleaseSession)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.MiddlewareConfigFrom(cfg.Security)))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Server))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(queue)
	if w != nil {
		tree.AddDataService(wal.NewGCService(w, cfg.WAL.GCInterval))
	}

	tree.AddMessagingService(hub)
	tree.AddMessagingService(sink)
	for _, c := range busConsumers(bus, hub, cfg.Webhook) {
		tree.AddMessagingService(c)
	}
	tree.AddMessagingService(monitors)

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	serveErr := tree.Serve(ctx)

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", serveErr)
	}
	return nil
}
