// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrUnexpectedStatus is returned by typed helpers when upstream answers
// with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// Filter metadata types accepted by Filters.
const (
	FilterGenres         = "genres"
	FilterLanguages      = "languages"
	FilterCertifications = "certifications"
	FilterCountries      = "countries"
)

var filterPaths = map[string]string{
	FilterGenres:         "/genre/movie/list",
	FilterLanguages:      "/configuration/languages",
	FilterCertifications: "/certification/movie/list",
	FilterCountries:      "/configuration/countries",
}

// FilterPath returns the upstream path for a filter metadata type.
func FilterPath(filterType string) (string, bool) {
	p, ok := filterPaths[filterType]
	return p, ok
}

// Trending fetches /trending/{mediaType}/{timeWindow}.
func (c *Client) Trending(ctx context.Context, mediaType, timeWindow string) (*Response, error) {
	if mediaType == "" {
		mediaType = "movie"
	}
	if timeWindow == "" {
		timeWindow = "week"
	}
	path := "/trending/" + url.PathEscape(mediaType) + "/" + url.PathEscape(timeWindow)
	return c.Fetch(ctx, path, nil)
}

// Movie fetches details with credits and images appended.
func (c *Client) Movie(ctx context.Context, id int64) (*Response, error) {
	return c.Fetch(ctx, moviePath(id, ""), url.Values{"append_to_response": {"credits,images"}})
}

// Reviews fetches one page of reviews.
func (c *Client) Reviews(ctx context.Context, id int64, page string) (*Response, error) {
	return c.Fetch(ctx, moviePath(id, "/reviews"), pageParams(page))
}

// Recommendations fetches one page of recommendations.
func (c *Client) Recommendations(ctx context.Context, id int64, page string) (*Response, error) {
	return c.Fetch(ctx, moviePath(id, "/recommendations"), pageParams(page))
}

// Discover runs /discover/movie with already-built parameters.
func (c *Client) Discover(ctx context.Context, params url.Values) (*Response, error) {
	return c.Fetch(ctx, "/discover/movie", params)
}

// Search runs /search/movie for the first page, adult titles excluded.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	return c.Fetch(ctx, "/search/movie", url.Values{
		"query":         {query},
		"page":          {"1"},
		"include_adult": {"false"},
	})
}

// Filters fetches filter metadata for one of the Filter* types.
func (c *Client) Filters(ctx context.Context, filterType string) (*Response, error) {
	path, ok := FilterPath(filterType)
	if !ok {
		return nil, fmt.Errorf("unknown filter type %q", filterType)
	}
	return c.Fetch(ctx, path, nil)
}

// RecommendationsFor returns the first page of recommendations for id as
// typed movies.
func (c *Client) RecommendationsFor(ctx context.Context, id int64) ([]Movie, error) {
	resp, err := c.Recommendations(ctx, id, "1")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %d for movie %d", ErrUnexpectedStatus, resp.StatusCode, id)
	}
	page, err := DecodeMoviePage(resp.Body)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func moviePath(id int64, suffix string) string {
	return "/movie/" + strconv.FormatInt(id, 10) + suffix
}

func pageParams(page string) url.Values {
	if page == "" {
		page = "1"
	}
	return url.Values{"page": {page}}
}
