// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package discover models discovery filters and translates them to upstream
/discover/movie query parameters.

A FilterState travels three ways:

  - ParseRequest reads the service's discover parameters (genre, year_min,
    rating_min, ...) from an inbound request.
  - BuildQuery turns a state into the upstream query (with_genres,
    primary_release_date.gte, vote_average.gte, ...).
  - Encode and Decode round-trip a state through the client URL so a
    filtered view can be bookmarked and restored.

Bounds:

	rating  0..10   (defaults 0 and 10 mean "no bound")
	runtime 0..300  (defaults 0 and 300 mean "no bound")

Setters clamp so that min never exceeds max.
*/
package discover

import (
	"slices"
)

// Bounds and defaults.
const (
	RatingFloor  = 0.0
	RatingCeil   = 10.0
	RuntimeFloor = 0
	RuntimeCeil  = 300

	DefaultSort     = "popularity.desc"
	DefaultMinVotes = 100
	DefaultPage     = 1
)

// SortOption is a sort key offered to the user.
type SortOption struct {
	Value string
	Label string
}

// SortOptions lists the sort keys the client offers, default first.
var SortOptions = []SortOption{
	{Value: "popularity.desc", Label: "Most Popular"},
	{Value: "vote_average.desc", Label: "Highest Rated"},
	{Value: "primary_release_date.desc", Label: "Newest"},
	{Value: "primary_release_date.asc", Label: "Oldest"},
	{Value: "revenue.desc", Label: "Highest Grossing"},
	{Value: "original_title.asc", Label: "Title A-Z"},
}

// ValidSort reports whether key is one of SortOptions.
func ValidSort(key string) bool {
	return slices.ContainsFunc(SortOptions, func(o SortOption) bool { return o.Value == key })
}

// FilterState holds the active discovery filters. Start from Default; the
// zero value has a rating ceiling of 0.
//
// Fields:
//   - Genres: genre ids, in selection order (upstream ANDs them)
//   - YearMin, YearMax: release year bounds, 0 = unset
//   - RatingMin, RatingMax: vote average bounds within 0..10
//   - RuntimeMin, RuntimeMax: minutes within 0..300
//   - Language: ISO 639-1 original language, "" = any
//   - SortBy: upstream sort key
//   - Page: 1-based result page
//   - Region: ISO 3166-1 release region, "" = none
//   - MinVotes: minimum vote count, keeps averages meaningful
type FilterState struct {
	Genres     []int
	YearMin    int
	YearMax    int
	RatingMin  float64
	RatingMax  float64
	RuntimeMin int
	RuntimeMax int
	Language   string
	SortBy     string
	Page       int
	Region     string
	MinVotes   int
}

// Default returns the cleared filter state.
func Default() FilterState {
	return FilterState{
		Genres:     []int{},
		RatingMin:  RatingFloor,
		RatingMax:  RatingCeil,
		RuntimeMin: RuntimeFloor,
		RuntimeMax: RuntimeCeil,
		SortBy:     DefaultSort,
		Page:       DefaultPage,
		MinVotes:   DefaultMinVotes,
	}
}

// Active reports whether any filter differs from Default. Page is ignored.
func (f FilterState) Active() bool {
	d := Default()
	return len(f.Genres) > 0 ||
		f.YearMin != 0 || f.YearMax != 0 ||
		f.RatingMin != d.RatingMin || f.RatingMax != d.RatingMax ||
		f.RuntimeMin != d.RuntimeMin || f.RuntimeMax != d.RuntimeMax ||
		f.Language != "" || f.Region != "" ||
		f.SortBy != d.SortBy || f.MinVotes != d.MinVotes
}

// Clone returns a deep copy.
func (f FilterState) Clone() FilterState {
	f.Genres = slices.Clone(f.Genres)
	if f.Genres == nil {
		f.Genres = []int{}
	}
	return f
}

// Clamp forces every field into range and restores min <= max.
func (f *FilterState) Clamp() {
	f.RatingMin = clampFloat(f.RatingMin, RatingFloor, RatingCeil)
	f.RatingMax = clampFloat(f.RatingMax, RatingFloor, RatingCeil)
	if f.RatingMin > f.RatingMax {
		f.RatingMin = f.RatingMax
	}

	f.RuntimeMin = clampInt(f.RuntimeMin, RuntimeFloor, RuntimeCeil)
	f.RuntimeMax = clampInt(f.RuntimeMax, RuntimeFloor, RuntimeCeil)
	if f.RuntimeMin > f.RuntimeMax {
		f.RuntimeMin = f.RuntimeMax
	}

	if f.YearMin < 0 {
		f.YearMin = 0
	}
	if f.YearMax < 0 {
		f.YearMax = 0
	}
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.MinVotes < 0 {
		f.MinVotes = 0
	}
	if f.SortBy == "" {
		f.SortBy = DefaultSort
	}
	if f.Genres == nil {
		f.Genres = []int{}
	}
}

// SetRatingMin sets the lower rating bound, never above RatingMax.
func (f *FilterState) SetRatingMin(v float64) {
	f.RatingMin = min(clampFloat(v, RatingFloor, RatingCeil), f.RatingMax)
}

// SetRatingMax sets the upper rating bound, never below RatingMin.
func (f *FilterState) SetRatingMax(v float64) {
	f.RatingMax = max(clampFloat(v, RatingFloor, RatingCeil), f.RatingMin)
}

// SetRuntimeMin sets the lower runtime bound, never above RuntimeMax.
func (f *FilterState) SetRuntimeMin(v int) {
	f.RuntimeMin = min(clampInt(v, RuntimeFloor, RuntimeCeil), f.RuntimeMax)
}

// SetRuntimeMax sets the upper runtime bound, never below RuntimeMin.
func (f *FilterState) SetRuntimeMax(v int) {
	f.RuntimeMax = max(clampInt(v, RuntimeFloor, RuntimeCeil), f.RuntimeMin)
}

// SetYears sets the release year bounds; 0 clears a bound.
func (f *FilterState) SetYears(yearMin, yearMax int) {
	f.YearMin = max(yearMin, 0)
	f.YearMax = max(yearMax, 0)
}

// ToggleGenre adds id if absent and removes it otherwise.
func (f *FilterState) ToggleGenre(id int) {
	if i := slices.Index(f.Genres, id); i >= 0 {
		f.Genres = slices.Delete(f.Genres, i, i+1)
		return
	}
	f.Genres = append(f.Genres, id)
}

// SetSort sets the sort key, falling back to DefaultSort for unknown keys.
func (f *FilterState) SetSort(key string) {
	if !ValidSort(key) {
		key = DefaultSort
	}
	f.SortBy = key
}

// SetLanguage sets the original language filter.
func (f *FilterState) SetLanguage(code string) {
	f.Language = code
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
