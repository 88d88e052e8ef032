// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
)

// GCRunner runs one value log garbage collection pass.
// *favorites.Store satisfies it.
type GCRunner interface {
	RunGC() (bool, error)
}

// StoreGCService periodically reclaims favorites value log space.
type StoreGCService struct {
	store    GCRunner
	interval time.Duration
	logger   zerolog.Logger
}

// NewStoreGCService runs GC on store every interval. A non-positive
// interval uses 10 minutes.
func NewStoreGCService(store GCRunner, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		logger:   logging.WithComponent("store-gc"),
	}
}

// Serve implements suture.Service. GC failures are logged and retried on
// the next tick. A closed store ends the service without a restart.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rewritten, err := s.store.RunGC()
			switch {
			case errors.Is(err, favorites.ErrUnavailable):
				s.logger.Info().Msg("Favorites store closed, stopping GC")
				return suture.ErrDoNotRestart
			case err != nil:
				s.logger.Warn().Err(err).Msg("Value log GC failed")
			case rewritten:
				s.logger.Debug().Msg("Value log GC reclaimed space")
			}
		}
	}
}

// String names the service in supervisor events.
func (s *StoreGCService) String() string {
	return "store-gc"
}
