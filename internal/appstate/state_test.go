// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package appstate

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

func TestNew_AllSectionsIdle(t *testing.T) {
	t.Parallel()

	s := New()
	for _, id := range Sections {
		sec := s.Section(id)
		if sec.Status != StatusIdle || sec.Message != "" {
			t.Errorf("%s = %v %q, want idle", id, sec.Status, sec.Message)
		}
	}
	if s.Filters().Active() {
		t.Error("new state has active filters")
	}
}

func TestCommit_StatusFromResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  Result
		want Status
	}{
		{"movies", Result{Movies: []tmdb.Movie{{ID: 1}}}, StatusReady},
		{"no movies", Result{}, StatusEmpty},
		{"details", Result{Details: &Details{}}, StatusReady},
		{"store down", Result{Err: fmt.Errorf("wrap: %w", ErrStoreUnavailable)}, StatusStoreUnavailable},
		{"upstream down", Result{Err: ErrUpstream}, StatusUpstreamError},
		{"other error", Result{Err: errors.New("boom")}, StatusUpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			ticket := s.Begin(SectionSearch)
			if got := s.Section(SectionSearch).Status; got != StatusLoading {
				t.Fatalf("after Begin status = %v, want loading", got)
			}
			if !s.Commit(ticket, tt.res) {
				t.Fatal("Commit() = false for current ticket")
			}
			if got := s.Section(SectionSearch).Status; got != tt.want {
				t.Errorf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommit_DropsStaleTicket(t *testing.T) {
	t.Parallel()

	s := New()
	first := s.Begin(SectionSearch)
	second := s.Begin(SectionSearch)

	if !s.Commit(second, Result{Movies: []tmdb.Movie{{ID: 2, Title: "newer"}}}) {
		t.Fatal("latest ticket rejected")
	}
	if s.Commit(first, Result{Movies: []tmdb.Movie{{ID: 1, Title: "older"}}}) {
		t.Error("stale ticket applied")
	}

	sec := s.Section(SectionSearch)
	if len(sec.Movies) != 1 || sec.Movies[0].Title != "newer" {
		t.Errorf("movies = %+v, want the newer result", sec.Movies)
	}
}

func TestCommit_TicketsAreIndependentPerSection(t *testing.T) {
	t.Parallel()

	s := New()
	search := s.Begin(SectionSearch)
	s.Begin(SectionTrending)

	if !s.Commit(search, Result{Movies: []tmdb.Movie{{ID: 1}}}) {
		t.Error("search ticket invalidated by a trending load")
	}
}

func TestReset_InvalidatesInFlight(t *testing.T) {
	t.Parallel()

	s := New()
	ticket := s.Begin(SectionSearch)
	s.Reset(SectionSearch)

	if s.Commit(ticket, Result{Movies: []tmdb.Movie{{ID: 1}}}) {
		t.Error("result applied after Reset")
	}
	if got := s.Section(SectionSearch).Status; got != StatusIdle {
		t.Errorf("status = %v, want idle", got)
	}
}

func TestCommit_ConcurrentTickets(t *testing.T) {
	t.Parallel()

	s := New()
	tickets := make([]Ticket, 50)
	for i := range tickets {
		tickets[i] = s.Begin(SectionDiscover)
	}

	var wg sync.WaitGroup
	applied := make([]bool, len(tickets))
	for i := range tickets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			applied[i] = s.Commit(tickets[i], Result{Movies: []tmdb.Movie{{ID: int64(i + 1)}}})
		}(i)
	}
	wg.Wait()

	for i, ok := range applied {
		if ok != (i == len(tickets)-1) {
			t.Errorf("ticket %d applied = %v", i, ok)
		}
	}
	if got := s.Section(SectionDiscover).Movies[0].ID; got != int64(len(tickets)) {
		t.Errorf("movie = %d, want %d", got, len(tickets))
	}
}

func TestMessages_Distinct(t *testing.T) {
	t.Parallel()

	empty := Message(SectionFavorites, StatusEmpty)
	down := Message(SectionFavorites, StatusStoreUnavailable)
	if empty == "" || down == "" || empty == down {
		t.Errorf("favorites empty %q and unavailable %q must differ", empty, down)
	}

	for _, id := range Sections {
		noResults := Message(id, StatusEmpty)
		upstream := Message(id, StatusUpstreamError)
		if noResults == "" || upstream == "" || noResults == upstream {
			t.Errorf("%s: empty %q vs upstream %q", id, noResults, upstream)
		}
		if Message(id, StatusLoading) == "" {
			t.Errorf("%s has no loading message", id)
		}
		if Message(id, StatusReady) != "" {
			t.Errorf("%s ready carries a message", id)
		}
	}
}

func TestCommitFavorites_IsFavorite(t *testing.T) {
	t.Parallel()

	s := New()
	applied := s.CommitFavorites(s.Begin(SectionFavorites), []favorites.Favorite{
		{MovieID: 603, MovieData: json.RawMessage(`{"title":"The Matrix"}`)},
		{MovieID: 27205},
	})
	if !applied {
		t.Fatal("current ticket not applied")
	}
	if !s.IsFavorite(603) || !s.IsFavorite(27205) {
		t.Error("saved ids not favorited")
	}
	if s.IsFavorite(1) {
		t.Error("unsaved id favorited")
	}
	sec := s.Section(SectionFavorites)
	if sec.Status != StatusReady || len(sec.Movies) != 2 || sec.Movies[0].Title != "The Matrix" {
		t.Errorf("favorites section = %+v", sec)
	}

	s.CommitFavorites(s.Begin(SectionFavorites), nil)
	if s.IsFavorite(603) {
		t.Error("favorited set not replaced")
	}
	if got := s.Section(SectionFavorites).Status; got != StatusEmpty {
		t.Errorf("status = %v, want empty", got)
	}
}

func TestCommitFavorites_StaleTicket(t *testing.T) {
	t.Parallel()

	s := New()
	stale := s.Begin(SectionFavorites)
	current := s.Begin(SectionFavorites)

	if !s.CommitFavorites(current, nil) {
		t.Fatal("current ticket not applied")
	}
	if s.CommitFavorites(stale, []favorites.Favorite{{MovieID: 7}}) {
		t.Error("stale ticket applied")
	}
	if s.IsFavorite(7) || len(s.Favorites()) != 0 {
		t.Error("stale favorites leaked into the favorited set")
	}
	if got := s.Section(SectionFavorites).Status; got != StatusEmpty {
		t.Errorf("status = %v, want empty", got)
	}

	if s.CommitFavorites(s.Begin(SectionSearch), []favorites.Favorite{{MovieID: 7}}) {
		t.Error("ticket for another section applied")
	}
}

func TestFilters_URLRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	s.UpdateFilters(func(f *discover.FilterState) {
		f.ToggleGenre(28)
		f.ToggleGenre(878)
		f.SetYears(1990, 1999)
		f.SetRatingMin(7.5)
		f.SetRuntimeMax(150)
		f.SetLanguage("en")
		f.SetSort("vote_average.desc")
	})
	want := s.Filters()

	raw := s.FilterQuery().Encode()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatal(err)
	}

	restored := New()
	if !restored.LoadFilterQuery(q) {
		t.Error("LoadFilterQuery() reported no filters")
	}
	got := restored.Filters()
	if got.YearMin != want.YearMin || got.YearMax != want.YearMax ||
		got.RatingMin != want.RatingMin || got.RuntimeMax != want.RuntimeMax ||
		got.Language != want.Language || got.SortBy != want.SortBy ||
		len(got.Genres) != len(want.Genres) {
		t.Errorf("restored filters = %+v, want %+v", got, want)
	}
}

func TestUpdateFilters_Clamps(t *testing.T) {
	t.Parallel()

	s := New()
	f := s.UpdateFilters(func(f *discover.FilterState) {
		f.RatingMin = 42
		f.RuntimeMin = -5
	})
	if f.RatingMin > discover.RatingCeil || f.RuntimeMin < discover.RuntimeFloor {
		t.Errorf("filters not clamped: %+v", f)
	}

	s.ResetFilters()
	if s.Filters().Active() {
		t.Error("ResetFilters left active filters")
	}
}
