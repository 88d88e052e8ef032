// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend builds a "you might also like" list from the user's
// favorites by fanning out to upstream per-movie recommendations and
// merging the results.
package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Defaults used when configuration leaves a value unset.
const (
	DefaultMaxSeeds = 5
	DefaultLimit    = 12
)

// Fetcher returns upstream recommendations for one movie.
// *tmdb.Client satisfies it.
type Fetcher interface {
	RecommendationsFor(ctx context.Context, movieID int64) ([]tmdb.Movie, error)
}

// Aggregator merges recommendations seeded by favorites. It is safe for
// concurrent use.
type Aggregator struct {
	fetcher  Fetcher
	maxSeeds int
	limit    int
	logger   zerolog.Logger
}

// NewAggregator creates an aggregator. A nil cfg uses the defaults.
func NewAggregator(fetcher Fetcher, cfg *config.RecommendConfig) *Aggregator {
	a := &Aggregator{
		fetcher:  fetcher,
		maxSeeds: DefaultMaxSeeds,
		limit:    DefaultLimit,
		logger:   logging.WithComponent("recommend"),
	}
	if cfg != nil {
		if cfg.MaxSeeds > 0 {
			a.maxSeeds = cfg.MaxSeeds
		}
		if cfg.Limit > 0 {
			a.limit = cfg.Limit
		}
	}
	return a
}

// branchResult holds one seed's upstream recommendations.
type branchResult struct {
	movieID int64
	movies  []tmdb.Movie
	err     error
}

// Recommend returns up to limit movies recommended for favs, most popular
// first, excluding anything already favorited. An empty favs returns an
// empty list without touching the network. Failed branches are skipped.
func (a *Aggregator) Recommend(ctx context.Context, favs []favorites.Favorite) []tmdb.Movie {
	if len(favs) == 0 {
		return []tmdb.Movie{}
	}
	start := time.Now()

	seeds := favs[:min(len(favs), a.maxSeeds)]
	results := a.fetchAll(ctx, seeds)

	lists := make([][]tmdb.Movie, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			logging.Ctx(ctx).Warn().Err(r.err).Int64("movie_id", r.movieID).Msg("Recommendation branch failed")
			continue
		}
		lists = append(lists, r.movies)
	}

	merged := Merge(favs, lists, a.limit)
	metrics.RecordRecommendation(len(merged), failed, time.Since(start))

	a.logger.Debug().
		Int("seeds", len(seeds)).
		Int("failed", failed).
		Int("results", len(merged)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations aggregated")
	return merged
}

// fetchAll runs one fetch per seed in parallel. Results keep seed order.
func (a *Aggregator) fetchAll(ctx context.Context, seeds []favorites.Favorite) []branchResult {
	results := make([]branchResult, len(seeds))
	var wg sync.WaitGroup

	for i := range seeds {
		wg.Add(1)
		go func(idx int, movieID int64) {
			defer wg.Done()
			movies, err := a.fetcher.RecommendationsFor(ctx, movieID)
			results[idx] = branchResult{movieID: movieID, movies: movies, err: err}
		}(i, seeds[i].MovieID)
	}

	wg.Wait()
	return results
}
