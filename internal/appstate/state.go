// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package appstate is the presentation model of a Marquee client: the
// favorited-id set that drives card buttons, the discovery FilterState and
// its URL round-trip, and one view per data section with distinct loading,
// empty and error states.
//
// All mutation goes through State methods. Each section hands out
// generation tickets so a response that arrives after a newer request for
// the same section is discarded instead of overwriting it.
package appstate

import (
	"net/url"
	"sync"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// SectionID names a data section of the client.
type SectionID string

const (
	SectionTrending        SectionID = "trending"
	SectionFavorites       SectionID = "favorites"
	SectionRecommendations SectionID = "recommendations"
	SectionSearch          SectionID = "search"
	SectionDiscover        SectionID = "discover"
	SectionDetails         SectionID = "details"
)

// Sections lists every section in display order.
var Sections = []SectionID{
	SectionTrending,
	SectionFavorites,
	SectionRecommendations,
	SectionSearch,
	SectionDiscover,
	SectionDetails,
}

// Details is the content of the details view.
type Details struct {
	Movie           *tmdb.MovieDetails
	Reviews         []tmdb.Review
	Recommendations []tmdb.Movie
}

// Section is a read-only snapshot of one section.
type Section struct {
	ID      SectionID
	Status  Status
	Message string
	Movies  []tmdb.Movie
	Details *Details
}

// Result is what a load produced for a section. Err, when set, decides the
// status; otherwise the section is Ready or Empty depending on content.
type Result struct {
	Movies  []tmdb.Movie
	Details *Details
	Err     error
}

// Ticket identifies one load of one section.
type Ticket struct {
	Section    SectionID
	Generation uint64
}

type sectionState struct {
	generation uint64
	status     Status
	movies     []tmdb.Movie
	details    *Details
}

// State is the client application state. It is safe for concurrent use.
type State struct {
	mu        sync.Mutex
	favorited map[int64]struct{}
	favorites []favorites.Favorite
	filters   discover.FilterState
	options   FilterOptions
	sections  map[SectionID]*sectionState
}

// New returns a State with every section Idle and default filters.
func New() *State {
	s := &State{
		favorited: make(map[int64]struct{}),
		filters:   discover.Default(),
		sections:  make(map[SectionID]*sectionState, len(Sections)),
	}
	for _, id := range Sections {
		s.sections[id] = &sectionState{status: StatusIdle}
	}
	return s
}

func (s *State) section(id SectionID) *sectionState {
	sec, ok := s.sections[id]
	if !ok {
		sec = &sectionState{status: StatusIdle}
		s.sections[id] = sec
	}
	return sec
}

// Begin marks a section Loading and returns the ticket its result must be
// committed with. Any ticket issued earlier for the section becomes stale.
func (s *State) Begin(id SectionID) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(id)
	sec.generation++
	sec.status = StatusLoading
	return Ticket{Section: id, Generation: sec.generation}
}

// Commit applies res to the ticket's section and reports whether it was
// applied. Results for stale tickets are dropped.
func (s *State) Commit(t Ticket, res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(t.Section)
	if t.Generation != sec.generation {
		return false
	}
	sec.apply(res)
	return true
}

func (sec *sectionState) apply(res Result) {
	sec.status = statusFor(res)
	if res.Err != nil {
		sec.movies = nil
		sec.details = nil
		return
	}
	sec.movies = res.Movies
	sec.details = res.Details
}

// Reset returns a section to Idle and invalidates in-flight tickets.
func (s *State) Reset(id SectionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(id)
	sec.generation++
	sec.status = StatusIdle
	sec.movies = nil
	sec.details = nil
}

// Section returns a snapshot of a section.
func (s *State) Section(id SectionID) Section {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(id)
	return Section{
		ID:      id,
		Status:  sec.status,
		Message: Message(id, sec.status),
		Movies:  append([]tmdb.Movie(nil), sec.movies...),
		Details: sec.details,
	}
}

// CommitFavorites applies a successful favorites load for ticket t. The
// favorites list, the favorited-id set and the favorites section change
// together, and only when t is still the latest favorites ticket.
func (s *State) CommitFavorites(t Ticket, favs []favorites.Favorite) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := s.section(SectionFavorites)
	if t.Section != SectionFavorites || t.Generation != sec.generation {
		return false
	}
	s.favorites = append([]favorites.Favorite(nil), favs...)
	s.favorited = favorites.IDSet(favs)
	sec.apply(Result{Movies: favoriteMovies(favs)})
	return true
}

// favoriteMovies renders favorites as cards from their snapshots.
func favoriteMovies(favs []favorites.Favorite) []tmdb.Movie {
	movies := make([]tmdb.Movie, 0, len(favs))
	for i := range favs {
		snap, err := favs[i].Movie()
		if err != nil {
			snap = favorites.Snapshot{}
		}
		movies = append(movies, tmdb.Movie{
			ID:          favs[i].MovieID,
			Title:       snap.Title,
			PosterPath:  snap.PosterPath,
			VoteAverage: snap.VoteAverage,
			ReleaseDate: snap.ReleaseDate,
		})
	}
	return movies
}

// Favorites returns the last favorites list.
func (s *State) Favorites() []favorites.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]favorites.Favorite(nil), s.favorites...)
}

// IsFavorite reports whether id is currently favorited.
func (s *State) IsFavorite(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorited[id]
	return ok
}

// Filters returns a copy of the current filter state.
func (s *State) Filters() discover.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// UpdateFilters applies fn to a copy of the filters and stores the clamped
// result.
func (s *State) UpdateFilters(fn func(*discover.FilterState)) discover.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.filters.Clone()
	fn(&f)
	f.Clamp()
	s.filters = f
	return f.Clone()
}

// ResetFilters restores the default filters.
func (s *State) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = discover.Default()
}

// FilterQuery encodes the filters for the page URL.
func (s *State) FilterQuery() url.Values {
	return discover.Encode(s.Filters())
}

// LoadFilterQuery restores filters from a page URL query and reports
// whether any non-default filter was present.
func (s *State) LoadFilterQuery(q url.Values) bool {
	f := discover.Decode(q)

	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()

	return discover.HasFilters(q)
}
