// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// newHandler wires the upstream client, the favorites store and the
// recommender into the HTTP router. store may be nil.
func newHandler(cfg *config.Config, store *favorites.Store) http.Handler {
	client := tmdb.NewClient(&cfg.TMDB)

	// A nil *favorites.Store must reach the handler as a nil interface.
	var fs api.FavoritesStore
	if store != nil {
		fs = store
	}

	handler := api.NewHandler(client, fs, recommend.NewAggregator(client, &cfg.Recommend))
	mw := api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security))
	return api.NewRouter(handler, mw).Setup()
}

// errShutdownTimeout is returned when the supervisor outlives the shutdown
// budget after cancellation.
var errShutdownTimeout = errors.New("supervisor did not stop in time")

// awaitShutdown waits for the single result the supervisor sends on errCh.
// After ctx is canceled it waits at most timeout. A context.Canceled result
// is a clean stop and returns nil.
func awaitShutdown(ctx context.Context, errCh <-chan error, timeout time.Duration) error {
	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case err = <-errCh:
		case <-timer.C:
			return fmt.Errorf("%w after %s", errShutdownTimeout, timeout)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
