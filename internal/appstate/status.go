// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package appstate

import "errors"

// Status is the display state of a section.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusEmpty
	StatusStoreUnavailable
	StatusUpstreamError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	case StatusStoreUnavailable:
		return "store_unavailable"
	case StatusUpstreamError:
		return "upstream_error"
	default:
		return "unknown"
	}
}

var (
	// ErrStoreUnavailable reports that favorites could not be read or written.
	ErrStoreUnavailable = errors.New("favorites store unavailable")

	// ErrUpstream reports that the metadata service could not be reached or
	// answered with an error.
	ErrUpstream = errors.New("upstream request failed")

	// ErrAlreadyFavorite reports an add for a movie that is already saved.
	ErrAlreadyFavorite = errors.New("movie already in favorites")
)

func statusFor(res Result) Status {
	switch {
	case errors.Is(res.Err, ErrStoreUnavailable):
		return StatusStoreUnavailable
	case res.Err != nil:
		return StatusUpstreamError
	case res.Details != nil:
		return StatusReady
	case len(res.Movies) == 0:
		return StatusEmpty
	default:
		return StatusReady
	}
}

var emptyMessages = map[SectionID]string{
	SectionTrending:        "No trending movies right now.",
	SectionFavorites:       "No favorites yet. Tap the heart on any movie to save it.",
	SectionRecommendations: "Add movies to your favorites to get personalized recommendations!",
	SectionSearch:          "No results found.",
	SectionDiscover:        "No movies match these filters.",
	SectionDetails:         "Movie details are not available.",
}

var loadingMessages = map[SectionID]string{
	SectionTrending:        "Loading trending movies...",
	SectionFavorites:       "Loading favorites...",
	SectionRecommendations: "Loading recommendations...",
	SectionSearch:          "Searching...",
	SectionDiscover:        "Loading filtered results...",
	SectionDetails:         "Loading movie details...",
}

// Message returns the user-facing text for a section in a status. Ready
// and Idle sections carry no message.
func Message(id SectionID, status Status) string {
	switch status {
	case StatusLoading:
		return loadingMessages[id]
	case StatusEmpty:
		return emptyMessages[id]
	case StatusStoreUnavailable:
		if id == SectionRecommendations {
			return "Recommendations need saved favorites, and favorites are unavailable right now."
		}
		return "Favorites are unavailable right now. Please try again later."
	case StatusUpstreamError:
		if id == SectionDetails {
			return "Could not load movie details. The movie service may be down."
		}
		return "The movie service is not responding. Please try again later."
	default:
		return ""
	}
}
