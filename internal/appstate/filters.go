// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package appstate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/tomtom215/marquee/internal/discover"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// FilterOptions are the choices offered by the filter panel.
type FilterOptions struct {
	Genres    []tmdb.Genre
	Languages []tmdb.Language
}

// GenreName returns the display name of a genre id.
func (o FilterOptions) GenreName(id int) (string, bool) {
	for _, g := range o.Genres {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// ChipKind identifies which filter an active-filter chip removes.
type ChipKind string

const (
	ChipGenre   ChipKind = "genre"
	ChipYear    ChipKind = "year"
	ChipRating  ChipKind = "rating"
	ChipRuntime ChipKind = "runtime"
)

// FilterChip is one removable entry of the active-filter summary.
type FilterChip struct {
	Kind    ChipKind
	Label   string
	GenreID int
}

// SetFilterOptions stores the filter panel choices.
func (s *State) SetFilterOptions(opts FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = FilterOptions{
		Genres:    append([]tmdb.Genre(nil), opts.Genres...),
		Languages: append([]tmdb.Language(nil), opts.Languages...),
	}
}

// FilterOptions returns the filter panel choices loaded so far.
func (s *State) FilterOptions() FilterOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterOptions{
		Genres:    append([]tmdb.Genre(nil), s.options.Genres...),
		Languages: append([]tmdb.Language(nil), s.options.Languages...),
	}
}

// ActiveFilters summarises the current filters as chips: one per selected
// genre with a known name, then year, rating and runtime when constrained.
func (s *State) ActiveFilters() []FilterChip {
	s.mu.Lock()
	f := s.filters.Clone()
	opts := s.options
	s.mu.Unlock()

	chips := []FilterChip{}
	for _, id := range f.Genres {
		if name, ok := opts.GenreName(id); ok {
			chips = append(chips, FilterChip{Kind: ChipGenre, Label: name, GenreID: id})
		}
	}
	if f.YearMin > 0 || f.YearMax > 0 {
		chips = append(chips, FilterChip{
			Kind:  ChipYear,
			Label: fmt.Sprintf("Year: %s - %s", yearLabel(f.YearMin), yearLabel(f.YearMax)),
		})
	}
	if f.RatingMin > discover.RatingFloor || f.RatingMax < discover.RatingCeil {
		chips = append(chips, FilterChip{
			Kind: ChipRating,
			Label: fmt.Sprintf("Rating: %s-%s",
				strconv.FormatFloat(f.RatingMin, 'f', -1, 64),
				strconv.FormatFloat(f.RatingMax, 'f', -1, 64)),
		})
	}
	if f.RuntimeMin > discover.RuntimeFloor || f.RuntimeMax < discover.RuntimeCeil {
		chips = append(chips, FilterChip{
			Kind:  ChipRuntime,
			Label: fmt.Sprintf("Runtime: %d-%d min", f.RuntimeMin, f.RuntimeMax),
		})
	}
	return chips
}

func yearLabel(year int) string {
	if year <= 0 {
		return "?"
	}
	return strconv.Itoa(year)
}

// LoadFilterOptions loads genres and languages for the filter panel. A
// failed list is left as it was; the other is still stored.
func (c *Controller) LoadFilterOptions(ctx context.Context) error {
	opts := c.state.FilterOptions()

	genres, genresErr := c.api.Genres(ctx)
	if genresErr == nil {
		opts.Genres = genres
	}
	langs, langsErr := c.api.Languages(ctx)
	if langsErr == nil {
		opts.Languages = langs
	}
	c.state.SetFilterOptions(opts)

	err := errors.Join(genresErr, langsErr)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Filter options incomplete")
	}
	return err
}

// RemoveFilter clears the filter a chip stands for and reloads discover.
func (c *Controller) RemoveFilter(ctx context.Context, chip FilterChip) url.Values {
	return c.ApplyFilters(ctx, func(f *discover.FilterState) {
		switch chip.Kind {
		case ChipGenre:
			if slices.Contains(f.Genres, chip.GenreID) {
				f.ToggleGenre(chip.GenreID)
			}
		case ChipYear:
			f.SetYears(0, 0)
		case ChipRating:
			f.RatingMin, f.RatingMax = discover.RatingFloor, discover.RatingCeil
		case ChipRuntime:
			f.RuntimeMin, f.RuntimeMax = discover.RuntimeFloor, discover.RuntimeCeil
		}
	})
}
