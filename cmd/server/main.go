// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package main is the entry point for the Wayfare recommendation
// server.
//
// Wayfare serves personalized tour recommendations over an internal
// HTTP API. Collaborative filtering runs on an in-memory user-tour
// matrix loaded from DuckDB; cold-start users and tours fall back to
// popularity and category ranking.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 with defaults, optional YAML file, and
//     environment variable overrides
//  2. Database: DuckDB storage for users, tours, and interactions
//  3. Recommendation engine: cached matrix and similarity state
//  4. Event bus (optional): NATS JetStream for cross-instance cache
//     invalidation, external or embedded
//  5. Supervision tree: suture restarts the HTTP server, the event
//     consumer, and the matrix refresher on failure
//
// # Configuration
//
// All settings have working defaults except the internal shared
// secret, which must be set before the API accepts requests:
//
//	export INTERNAL_SHARED_SECRET=$(openssl rand -hex 32)
//	export DUCKDB_PATH=/data/wayfare.duckdb
//	./wayfare
//
// With the embedded event bus:
//
//	export EVENTS_ENABLED=true
//	export NATS_EMBEDDED_SERVER=true
//	export NATS_STORE_DIR=/data/nats
//	./wayfare
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, drains in-flight requests, then closes the
// event bus and the database.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wayfarelabs/wayfare/internal/api"
	"github.com/wayfarelabs/wayfare/internal/config"
	"github.com/wayfarelabs/wayfare/internal/database"
	"github.com/wayfarelabs/wayfare/internal/events"
	"github.com/wayfarelabs/wayfare/internal/logging"
	"github.com/wayfarelabs/wayfare/internal/recommend"
	"github.com/wayfarelabs/wayfare/internal/supervisor"
	"github.com/wayfarelabs/wayfare/internal/supervisor/services"
)

func main() {
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
		Str("database", cfg.Database.Path).
		Bool("events", cfg.Events.Enabled).
		Msg("Starting Wayfare")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	engine, err := recommend.New(db, engineConfig(&cfg.Recommend), logging.WithComponent("recommend"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	// The bus is optional; without it, cache freshness relies on the
	// TTL and content-hash checks alone.
	var bus *events.Service
	if cfg.Events.Enabled {
		bus, err = events.NewService(cfg.Events, engine, logging.WithComponent("events"))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize event bus")
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus")
			}
		}()
	}

	handler := api.NewHandler(db, engine, bus)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Refresh at half the TTL so a valid cache is always available.
	tree.AddMessagingService(services.NewMatrixRefreshService(
		engine, cfg.Recommend.CacheTTL/2, logging.WithComponent("matrix-refresh")))
	if bus != nil {
		tree.AddMessagingService(services.NewEventBusService(bus))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		select {
		case <-errCh:
		case <-time.After(cfg.Server.ShutdownTimeout + 5*time.Second):
			logging.Warn().Msg("Supervisor tree did not stop in time")
			if unstopped, err := tree.UnstoppedServiceReport(); err == nil {
				for _, svc := range unstopped {
					logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
				}
			}
		}
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			logging.Error().Err(err).Msg("Supervisor tree terminated unexpectedly")
		}
	}

	logging.Info().Msg("Wayfare stopped")
}

// engineConfig maps the loaded configuration onto engine settings.
func engineConfig(cfg *config.RecommendConfig) recommend.Config {
	out := recommend.DefaultConfig()
	out.EnableCaching = cfg.CacheEnabled
	out.CacheTTL = cfg.CacheTTL
	out.UseTimeDecay = cfg.TimeDecayEnabled
	out.HalfLifeDays = cfg.HalfLifeDays
	out.Normalize = cfg.Normalize
	out.RemoveOutliers = cfg.HandleOutliers
	out.HandleSparse = cfg.HandleSparsity
	out.TopKUsers = cfg.TopKUsers
	out.HybridUserWeight = cfg.HybridUserWeight
	out.DiversityWeight = cfg.DiversityWeight
	out.UseDiversity = cfg.UseDiversity
	out.EnableExplanations = cfg.WithExplanations
	out.BatchChunkSize = cfg.BatchChunkSize
	return out
}
