// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package appstate

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Display caps per section.
const (
	MaxTrending              = 24
	MaxSearchResults         = 24
	MaxReviews               = 5
	MaxDetailRecommendations = 8
)

// Controller runs client operations against an API and commits their
// results into a State.
type Controller struct {
	api    API
	state  *State
	logger zerolog.Logger
}

// NewController returns a controller. A nil state starts from New().
func NewController(api API, state *State) *Controller {
	if state == nil {
		state = New()
	}
	return &Controller{
		api:    api,
		state:  state,
		logger: logging.WithComponent("appstate"),
	}
}

// State returns the controlled state.
func (c *Controller) State() *State {
	return c.state
}

// LoadTrending loads the trending section.
func (c *Controller) LoadTrending(ctx context.Context) {
	t := c.state.Begin(SectionTrending)
	movies, err := c.api.Trending(ctx)
	c.commit(t, Result{Movies: capMovies(movies, MaxTrending), Err: err})
}

// LoadFavorites refreshes the favorites section and the favorited-id set,
// then reloads recommendations. When the store is unreachable the last
// known favorited set is kept so card buttons do not flip. A response
// superseded by a newer load changes nothing.
func (c *Controller) LoadFavorites(ctx context.Context) {
	t := c.state.Begin(SectionFavorites)
	favs, err := c.api.Favorites(ctx)
	if err != nil {
		if c.commit(t, Result{Err: err}) {
			c.commit(c.state.Begin(SectionRecommendations), Result{Err: err})
		}
		return
	}

	if !c.state.CommitFavorites(t, favs) {
		c.logger.Debug().Uint64("generation", t.Generation).Msg("Dropped stale favorites")
		return
	}
	c.LoadRecommendations(ctx)
}

// LoadRecommendations reloads the recommendations section. With no
// favorites it goes straight to Empty without a request.
func (c *Controller) LoadRecommendations(ctx context.Context) {
	t := c.state.Begin(SectionRecommendations)
	if len(c.state.Favorites()) == 0 {
		c.commit(t, Result{})
		return
	}
	movies, err := c.api.Recommendations(ctx)
	c.commit(t, Result{Movies: movies, Err: err})
}

// ToggleFavorite adds the movie when it is not a favorite and removes it
// otherwise, then refreshes favorites. It reports whether the movie is a
// favorite afterwards.
func (c *Controller) ToggleFavorite(ctx context.Context, movie tmdb.Movie) (bool, error) {
	var (
		err   error
		added bool
	)
	if c.state.IsFavorite(movie.ID) {
		err = c.api.RemoveFavorite(ctx, movie.ID)
	} else {
		err = c.api.AddFavorite(ctx, movie)
		added = err == nil || errors.Is(err, ErrAlreadyFavorite)
	}

	if err != nil && !errors.Is(err, ErrAlreadyFavorite) {
		c.logger.Warn().Err(err).Int64("movie_id", movie.ID).Msg("Failed to toggle favorite")
		return c.state.IsFavorite(movie.ID), err
	}

	c.LoadFavorites(ctx)
	return added, err
}

// Search loads search results. A blank query clears the section.
func (c *Controller) Search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		c.state.Reset(SectionSearch)
		return
	}
	t := c.state.Begin(SectionSearch)
	movies, err := c.api.Search(ctx, query)
	c.commit(t, Result{Movies: capMovies(movies, MaxSearchResults), Err: err})
}

// ApplyFilters updates the filters with fn (nil keeps them), loads the
// discover section and returns the query to put in the page URL.
func (c *Controller) ApplyFilters(ctx context.Context, fn func(*discover.FilterState)) url.Values {
	f := c.state.Filters()
	if fn != nil {
		f = c.state.UpdateFilters(fn)
	}
	t := c.state.Begin(SectionDiscover)
	movies, err := c.api.Discover(ctx, f)
	c.commit(t, Result{Movies: movies, Err: err})
	return discover.Encode(f)
}

// ClearFilters restores default filters and idles the discover section.
func (c *Controller) ClearFilters() {
	c.state.ResetFilters()
	c.state.Reset(SectionDiscover)
}

// OpenDetails loads the details view. Details, reviews and recommendations
// are fetched concurrently; only a details failure fails the view.
func (c *Controller) OpenDetails(ctx context.Context, id int64) {
	t := c.state.Begin(SectionDetails)

	var (
		wg         sync.WaitGroup
		movie      *tmdb.MovieDetails
		movieErr   error
		reviews    []tmdb.Review
		reviewsErr error
		recs       []tmdb.Movie
		recsErr    error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		movie, movieErr = c.api.Movie(ctx, id)
	}()
	go func() {
		defer wg.Done()
		reviews, reviewsErr = c.api.Reviews(ctx, id)
	}()
	go func() {
		defer wg.Done()
		recs, recsErr = c.api.MovieRecommendations(ctx, id)
	}()
	wg.Wait()

	if movieErr != nil {
		c.commit(t, Result{Err: movieErr})
		return
	}
	if reviewsErr != nil {
		c.logger.Debug().Err(reviewsErr).Int64("movie_id", id).Msg("Reviews unavailable")
	}
	if recsErr != nil {
		c.logger.Debug().Err(recsErr).Int64("movie_id", id).Msg("Movie recommendations unavailable")
	}

	if len(reviews) > MaxReviews {
		reviews = reviews[:MaxReviews]
	}
	c.commit(t, Result{Details: &Details{
		Movie:           movie,
		Reviews:         reviews,
		Recommendations: capMovies(recs, MaxDetailRecommendations),
	}})
}

func (c *Controller) commit(t Ticket, res Result) bool {
	if res.Err != nil {
		c.logger.Warn().Err(res.Err).Str("section", string(t.Section)).Msg("Section load failed")
	}
	if !c.state.Commit(t, res) {
		c.logger.Debug().Str("section", string(t.Section)).Uint64("generation", t.Generation).Msg("Dropped stale result")
		return false
	}
	return true
}

func capMovies(movies []tmdb.Movie, n int) []tmdb.Movie {
	if len(movies) > n {
		return movies[:n]
	}
	return movies
}
