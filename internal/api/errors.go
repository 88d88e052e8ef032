// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import "errors"

// Request errors detected before any store or upstream call.
var (
	// ErrMissingMovieID indicates an absent or non-positive movie id.
	ErrMissingMovieID = errors.New("missing movie id")

	// ErrInvalidMode indicates an unknown discover-or-trending mode.
	ErrInvalidMode = errors.New("invalid mode")
)

// Client-facing error messages. These strings are part of the HTTP contract.
const (
	msgMissingMovieID     = "missing movie id"
	msgInvalidMode        = "invalid mode"
	msgInvalidFilterType  = "Invalid type. Use: genres, languages, certifications, countries"
	msgFavoriteRequired   = "movie_id and movie_data required"
	msgFavoriteExists     = "Movie already in favorites"
	msgMovieIDParam       = "movie_id parameter required"
	msgMethodNotAllowed   = "Method not allowed"
	msgNotFound           = "Not found"
	msgStoreUnavailable   = "Database unavailable"
	msgUpstreamFailedStem = "Upstream request failed: "
)
