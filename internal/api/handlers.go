// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Upstream is the metadata client used by proxy handlers. *tmdb.Client
// satisfies it.
type Upstream interface {
	Trending(ctx context.Context, mediaType, timeWindow string) (*tmdb.Response, error)
	Movie(ctx context.Context, id int64) (*tmdb.Response, error)
	Reviews(ctx context.Context, id int64, page string) (*tmdb.Response, error)
	Recommendations(ctx context.Context, id int64, page string) (*tmdb.Response, error)
	Discover(ctx context.Context, params url.Values) (*tmdb.Response, error)
	Search(ctx context.Context, query string) (*tmdb.Response, error)
	Filters(ctx context.Context, filterType string) (*tmdb.Response, error)
	BreakerState() string
}

// FavoritesStore is the persistence used by favorites handlers.
// *favorites.Store satisfies it.
type FavoritesStore interface {
	List(ctx context.Context) ([]favorites.Favorite, error)
	Add(ctx context.Context, movieID int64, movieData json.RawMessage) (*favorites.Favorite, error)
	Remove(ctx context.Context, movieID int64) (int64, error)
	Available() bool
}

// Recommender builds recommendations from favorites.
// *recommend.Aggregator satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, favs []favorites.Favorite) []tmdb.Movie
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_favorites.go: favorites CRUD and recommendations
//   - handlers_proxy.go: discover-or-trending, search, filters
//   - handlers_health.go: health
//
// A nil store is served as unavailable: reads return [] and writes 503.
type Handler struct {
	upstream    Upstream
	store       FavoritesStore
	recommender Recommender
	startTime   time.Time
}

// NewHandler creates a handler. store may be nil when the favorites
// database could not be opened.
func NewHandler(upstream Upstream, store FavoritesStore, recommender Recommender) *Handler {
	return &Handler{
		upstream:    upstream,
		store:       store,
		recommender: recommender,
		startTime:   time.Now(),
	}
}

func (h *Handler) storeAvailable() bool {
	return h.store != nil && h.store.Available()
}
