// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Modes accepted by DiscoverOrTrending.
const (
	modeTrending        = "trending"
	modeMovie           = "movie"
	modeReviews         = "reviews"
	modeRecommendations = "recommendations"
	modeDiscover        = "discover"
)

// proxyRequest is a parsed discover-or-trending query.
type proxyRequest struct {
	Mode       string
	MovieID    int64
	MediaType  string
	TimeWindow string
	Page       string
	Discover   url.Values
}

// parseProxyRequest validates the mode and its required parameters.
func parseProxyRequest(q url.Values) (proxyRequest, error) {
	req := proxyRequest{Mode: q.Get("mode")}
	if req.Mode == "" {
		req.Mode = modeTrending
	}

	switch req.Mode {
	case modeTrending:
		req.MediaType = valueOr(q, "type", "movie")
		req.TimeWindow = valueOr(q, "time_window", "week")
	case modeMovie, modeReviews, modeRecommendations:
		req.MovieID = parseMovieID(q.Get("id"))
		if req.MovieID <= 0 {
			return req, ErrMissingMovieID
		}
		req.Page = valueOr(q, "page", "1")
	case modeDiscover:
		req.Discover = discover.BuildQuery(discover.ParseRequest(q))
	default:
		return req, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
	}
	return req, nil
}

// DiscoverOrTrending handles GET /discover-or-trending, proxying one of the
// trending, movie, reviews, recommendations or discover upstream calls.
func (h *Handler) DiscoverOrTrending(w http.ResponseWriter, r *http.Request) {
	req, err := parseProxyRequest(r.URL.Query())
	if err != nil {
		msg := msgInvalidMode
		if errors.Is(err, ErrMissingMovieID) {
			msg = msgMissingMovieID
		}
		respondError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	ctx := r.Context()
	var resp *tmdb.Response
	switch req.Mode {
	case modeTrending:
		resp, err = h.upstream.Trending(ctx, req.MediaType, req.TimeWindow)
	case modeMovie:
		resp, err = h.upstream.Movie(ctx, req.MovieID)
	case modeReviews:
		resp, err = h.upstream.Reviews(ctx, req.MovieID, req.Page)
	case modeRecommendations:
		resp, err = h.upstream.Recommendations(ctx, req.MovieID, req.Page)
	case modeDiscover:
		resp, err = h.upstream.Discover(ctx, req.Discover)
	}
	forwardUpstream(w, r, resp, err)
}

// Search handles GET /search?q=. An empty query answers {"results": []}
// without calling upstream.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondJSON(w, http.StatusOK, ResultsResponse{Results: []tmdb.Movie{}})
		return
	}

	resp, err := h.upstream.Search(r.Context(), q)
	forwardUpstream(w, r, resp, err)
}

// Filters handles GET /filters?type=genres|languages|certifications|countries.
func (h *Handler) Filters(w http.ResponseWriter, r *http.Request) {
	filterType := r.URL.Query().Get("type")
	if _, ok := tmdb.FilterPath(filterType); !ok {
		respondError(w, r, http.StatusBadRequest, msgInvalidFilterType, nil)
		return
	}

	resp, err := h.upstream.Filters(r.Context(), filterType)
	forwardUpstream(w, r, resp, err)
}

func valueOr(q url.Values, key, fallback string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return fallback
}
