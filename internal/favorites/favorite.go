// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package favorites

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// Errors returned by Store methods.
var (
	// ErrValidation is returned when movie_id or movie_data is missing.
	ErrValidation = errors.New("movie_id and movie_data required")

	// ErrConflict is returned when the movie is already a favorite.
	ErrConflict = errors.New("movie already in favorites")

	// ErrUnavailable wraps storage failures and operations on a closed store.
	ErrUnavailable = errors.New("favorites store unavailable")
)

// Favorite is a saved movie. MovieData is the snapshot taken when the
// movie was added and is never refreshed.
type Favorite struct {
	ID        string          `json:"_id"`
	MovieID   int64           `json:"movie_id"`
	MovieData json.RawMessage `json:"movie_data"`
	CreatedAt time.Time       `json:"created_at"`
}

// Snapshot is the movie summary clients store as movie_data.
type Snapshot struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

// Movie decodes MovieData as a Snapshot. Unknown fields are ignored.
func (f *Favorite) Movie() (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(f.MovieData, &s)
	return s, err
}

// IDSet returns the movie ids of favs as a set.
func IDSet(favs []Favorite) map[int64]struct{} {
	set := make(map[int64]struct{}, len(favs))
	for i := range favs {
		set[favs[i].MovieID] = struct{}{}
	}
	return set
}
