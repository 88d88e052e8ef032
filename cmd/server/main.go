// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for the Marquee server.
//
// Marquee proxies a movie metadata service (TMDB), keeps a list of favorite
// movies and recommends movies based on them.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (koanf v2)
//  2. Logging: zerolog, JSON or console
//  3. Favorites store: BadgerDB on disk or in memory. A store that fails to
//     open is not fatal; favorites reads return [] and writes 503.
//  4. Upstream client: rate limited, behind a circuit breaker
//  5. HTTP server and store GC, supervised by suture
//
// # Example
//
//	export TMDB_API_KEY=your-key
//	export FAVORITES_PATH=/var/lib/marquee/favorites
//	./marquee
//
// SIGINT and SIGTERM trigger a graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
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
		Output:    os.Stderr,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("tmdb_base_url", cfg.TMDB.BaseURL).
		Bool("store_in_memory", cfg.Store.InMemory).
		Str("store_path", cfg.Store.Path).
		Msg("Starting Marquee")

	store := openStore(&cfg.Store)
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logging.Err(err).Msg("Error closing favorites store")
			}
		}()
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHandler(cfg, store),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if store != nil && !cfg.Store.InMemory {
		tree.AddStoreService(services.NewStoreGCService(store, cfg.Store.GCInterval))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	errCh := tree.ServeBackground(ctx)

	if err := awaitShutdown(ctx, errCh, cfg.Server.ShutdownTimeout+5*time.Second); err != nil {
		logging.Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Marquee stopped gracefully")
}

// openStore opens the favorites store, or returns nil when it cannot be
// opened so the server runs with favorites unavailable.
func openStore(cfg *config.StoreConfig) *favorites.Store {
	logger := logging.With().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Logger()

	store, err := favorites.Open(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Favorites store unavailable, continuing without it")
		return nil
	}
	logger.Info().Msg("Favorites store opened")
	return store
}
