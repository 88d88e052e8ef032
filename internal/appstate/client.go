// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package appstate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// API is the server surface the controller drives.
type API interface {
	Trending(ctx context.Context) ([]tmdb.Movie, error)
	Discover(ctx context.Context, f discover.FilterState) ([]tmdb.Movie, error)
	Search(ctx context.Context, query string) ([]tmdb.Movie, error)
	Movie(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	Reviews(ctx context.Context, id int64) ([]tmdb.Review, error)
	MovieRecommendations(ctx context.Context, id int64) ([]tmdb.Movie, error)
	Genres(ctx context.Context) ([]tmdb.Genre, error)
	Languages(ctx context.Context) ([]tmdb.Language, error)

	Favorites(ctx context.Context) ([]favorites.Favorite, error)
	AddFavorite(ctx context.Context, movie tmdb.Movie) error
	RemoveFavorite(ctx context.Context, id int64) error
	Recommendations(ctx context.Context) ([]tmdb.Movie, error)
}

// storeStatusHeader mirrors api.StoreStatusHeader.
const storeStatusHeader = "X-Store-Status"

// maxResponseSize caps bodies read from the server.
const maxResponseSize = 8 << 20

// HTTPClient implements API over the service's HTTP endpoints.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for the service at baseURL, for example
// "http://localhost:8080/api". A nil httpClient uses a 15 second timeout.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Trending returns this week's trending movies.
func (c *HTTPClient) Trending(ctx context.Context) ([]tmdb.Movie, error) {
	return c.moviePage(ctx, "/discover-or-trending", url.Values{"mode": {"trending"}})
}

// Discover returns the first matching page for f.
func (c *HTTPClient) Discover(ctx context.Context, f discover.FilterState) ([]tmdb.Movie, error) {
	return c.moviePage(ctx, "/discover-or-trending", discover.Encode(f))
}

// Search returns movies matching query.
func (c *HTTPClient) Search(ctx context.Context, query string) ([]tmdb.Movie, error) {
	return c.moviePage(ctx, "/search", url.Values{"q": {query}})
}

// Movie returns details for id, with credits and images.
func (c *HTTPClient) Movie(ctx context.Context, id int64) (*tmdb.MovieDetails, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/discover-or-trending", movieParams("movie", id), nil)
	if err != nil {
		return nil, err
	}
	return tmdb.DecodeMovieDetails(body)
}

// Reviews returns the first page of reviews for id.
func (c *HTTPClient) Reviews(ctx context.Context, id int64) ([]tmdb.Review, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/discover-or-trending", movieParams("reviews", id), nil)
	if err != nil {
		return nil, err
	}
	page, err := tmdb.DecodeReviewPage(body)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

// MovieRecommendations returns movies recommended for id.
func (c *HTTPClient) MovieRecommendations(ctx context.Context, id int64) ([]tmdb.Movie, error) {
	return c.moviePage(ctx, "/discover-or-trending", movieParams("recommendations", id))
}

// Genres returns the movie genres for the filter panel.
func (c *HTTPClient) Genres(ctx context.Context) ([]tmdb.Genre, error) {
	body, err := c.filters(ctx, tmdb.FilterGenres)
	if err != nil {
		return nil, err
	}
	genres, err := tmdb.DecodeGenres(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return genres, nil
}

// Languages returns the original languages for the filter panel.
func (c *HTTPClient) Languages(ctx context.Context) ([]tmdb.Language, error) {
	body, err := c.filters(ctx, tmdb.FilterLanguages)
	if err != nil {
		return nil, err
	}
	langs, err := tmdb.DecodeLanguages(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return langs, nil
}

func (c *HTTPClient) filters(ctx context.Context, filterType string) ([]byte, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/filters", url.Values{"type": {filterType}}, nil)
	return body, err
}

// Favorites lists favorites. An empty list flagged by the server as
// unreadable is reported as ErrStoreUnavailable.
func (c *HTTPClient) Favorites(ctx context.Context) ([]favorites.Favorite, error) {
	body, header, err := c.do(ctx, http.MethodGet, "/favorites", nil, nil)
	if err != nil {
		return nil, err
	}
	if header.Get(storeStatusHeader) == "unavailable" {
		return nil, ErrStoreUnavailable
	}

	var favs []favorites.Favorite
	if err := json.Unmarshal(body, &favs); err != nil {
		return nil, fmt.Errorf("%w: decode favorites: %w", ErrStoreUnavailable, err)
	}
	return favs, nil
}

// AddFavorite saves the movie's summary fields as movie_data.
func (c *HTTPClient) AddFavorite(ctx context.Context, movie tmdb.Movie) error {
	payload, err := json.Marshal(map[string]any{
		"movie_id": movie.ID,
		"movie_data": favorites.Snapshot{
			ID:          movie.ID,
			Title:       movie.Title,
			PosterPath:  movie.PosterPath,
			VoteAverage: movie.VoteAverage,
			ReleaseDate: movie.ReleaseDate,
		},
	})
	if err != nil {
		return fmt.Errorf("encode favorite: %w", err)
	}
	_, _, err = c.do(ctx, http.MethodPost, "/favorites", nil, payload)
	return err
}

// RemoveFavorite deletes id from favorites. Removing an id that is not
// saved succeeds.
func (c *HTTPClient) RemoveFavorite(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/favorites", url.Values{"movie_id": {strconv.FormatInt(id, 10)}}, nil)
	return err
}

// Recommendations returns recommendations aggregated from the favorites.
func (c *HTTPClient) Recommendations(ctx context.Context) ([]tmdb.Movie, error) {
	return c.moviePage(ctx, "/favorites/recommendations", nil)
}

func (c *HTTPClient) moviePage(ctx context.Context, path string, params url.Values) ([]tmdb.Movie, error) {
	body, _, err := c.do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	page, err := tmdb.DecodeMoviePage(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return page.Results, nil
}

// do performs a request and maps failures onto the package errors:
// 503 is ErrStoreUnavailable, 409 is ErrAlreadyFavorite, anything else
// non-2xx or a transport failure is ErrUpstream.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body []byte) ([]byte, http.Header, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if len(data) > maxResponseSize {
		return nil, nil, fmt.Errorf("%w: response exceeds %d bytes", ErrUpstream, maxResponseSize)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, resp.Header, nil
	}

	msg := errorMessage(data, resp.StatusCode)
	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		return nil, nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, msg)
	case http.StatusConflict:
		return nil, nil, fmt.Errorf("%w: %s", ErrAlreadyFavorite, msg)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUpstream, msg)
	}
}

func errorMessage(body []byte, status int) string {
	var er struct {
		Error         string `json:"error"`
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(body, &er) == nil {
		if er.Error != "" {
			return er.Error
		}
		if er.StatusMessage != "" {
			return er.StatusMessage
		}
	}
	return "HTTP " + strconv.Itoa(status)
}

func movieParams(mode string, id int64) url.Values {
	return url.Values{"mode": {mode}, "id": {strconv.FormatInt(id, 10)}}
}
