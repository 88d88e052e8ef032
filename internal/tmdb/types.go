// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrMalformedResponse is returned when an upstream body cannot be decoded
// into the expected shape.
var ErrMalformedResponse = errors.New("malformed upstream response")

// Movie is a movie as listed by trending, discover, search and
// recommendations endpoints.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Adult            bool    `json:"adult"`
}

// Genre is a TMDB genre id and name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Language is an entry from /configuration/languages.
type Language struct {
	Code        string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// MovieDetails is the /movie/{id} payload. Credits and images are appended
// upstream on request and kept raw.
type MovieDetails struct {
	Movie
	Runtime int             `json:"runtime"`
	Genres  []Genre         `json:"genres"`
	Tagline string          `json:"tagline,omitempty"`
	Credits json.RawMessage `json:"credits,omitempty"`
	Images  json.RawMessage `json:"images,omitempty"`
}

// AuthorDetails carries a reviewer's optional rating.
type AuthorDetails struct {
	Username   string   `json:"username"`
	AvatarPath string   `json:"avatar_path"`
	Rating     *float64 `json:"rating"`
}

// Review is an entry from /movie/{id}/reviews.
type Review struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
	URL           string        `json:"url"`
}

// Page is a paginated TMDB list.
type Page[T any] struct {
	Page         int `json:"page"`
	Results      []T `json:"results"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// DecodeMoviePage decodes a movie list body and drops entries without a
// usable id.
func DecodeMoviePage(body []byte) (*Page[Movie], error) {
	var page Page[Movie]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	valid := page.Results[:0]
	for _, m := range page.Results {
		if m.ID > 0 {
			valid = append(valid, m)
		}
	}
	page.Results = valid
	return &page, nil
}

// DecodeReviewPage decodes a reviews body.
func DecodeReviewPage(body []byte) (*Page[Review], error) {
	var page Page[Review]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &page, nil
}

// DecodeMovieDetails decodes a /movie/{id} body.
func DecodeMovieDetails(body []byte) (*MovieDetails, error) {
	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if details.ID <= 0 {
		return nil, fmt.Errorf("%w: missing movie id", ErrMalformedResponse)
	}
	return &details, nil
}

// DecodeGenres decodes a /genre/movie/list body.
func DecodeGenres(body []byte) ([]Genre, error) {
	var list struct {
		Genres []Genre `json:"genres"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if list.Genres == nil {
		return nil, fmt.Errorf("%w: missing genres", ErrMalformedResponse)
	}
	return list.Genres, nil
}

// DecodeLanguages decodes a /configuration/languages body, dropping entries
// without a language code.
func DecodeLanguages(body []byte) ([]Language, error) {
	var langs []Language
	if err := json.Unmarshal(body, &langs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	valid := make([]Language, 0, len(langs))
	for _, l := range langs {
		if l.Code != "" {
			valid = append(valid, l)
		}
	}
	return valid, nil
}
