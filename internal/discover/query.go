// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package discover

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Request parameter names shared by the service and the client URL.
const (
	ParamMode       = "mode"
	ParamGenre      = "genre"
	ParamYearMin    = "year_min"
	ParamYearMax    = "year_max"
	ParamRatingMin  = "rating_min"
	ParamRatingMax  = "rating_max"
	ParamMinVotes   = "min_votes"
	ParamRuntimeMin = "runtime_min"
	ParamRuntimeMax = "runtime_max"
	ParamLanguage   = "language"
	ParamSortBy     = "sort_by"
	ParamPage       = "page"
	ParamRegion     = "region"
)

// BuildQuery translates f into /discover/movie parameters. vote_count.gte,
// sort_by and page are always present; every other key is omitted when it
// carries no constraint. A MinVotes of 0 or less uses DefaultMinVotes.
func BuildQuery(f FilterState) url.Values {
	q := url.Values{}

	if len(f.Genres) > 0 {
		q.Set("with_genres", joinInts(f.Genres))
	}
	if f.YearMin > 0 {
		q.Set("primary_release_date.gte", strconv.Itoa(f.YearMin)+"-01-01")
	}
	if f.YearMax > 0 {
		q.Set("primary_release_date.lte", strconv.Itoa(f.YearMax)+"-12-31")
	}
	if f.RatingMin > RatingFloor {
		q.Set("vote_average.gte", formatFloat(f.RatingMin))
	}
	if f.RatingMax < RatingCeil {
		q.Set("vote_average.lte", formatFloat(f.RatingMax))
	}

	minVotes := f.MinVotes
	if minVotes <= 0 {
		minVotes = DefaultMinVotes
	}
	q.Set("vote_count.gte", strconv.Itoa(minVotes))

	if f.RuntimeMin > RuntimeFloor {
		q.Set("with_runtime.gte", strconv.Itoa(f.RuntimeMin))
	}
	if f.RuntimeMax < RuntimeCeil {
		q.Set("with_runtime.lte", strconv.Itoa(f.RuntimeMax))
	}
	if f.Language != "" {
		q.Set("with_original_language", f.Language)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = DefaultSort
	}
	q.Set("sort_by", sortBy)

	page := f.Page
	if page < 1 {
		page = DefaultPage
	}
	q.Set("page", strconv.Itoa(page))

	if f.Region != "" {
		q.Set("region", f.Region)
	}
	return q
}

// ParseRequest reads discover parameters from an inbound query. Missing or
// malformed values keep their defaults and the result is clamped.
func ParseRequest(q url.Values) FilterState {
	f := Default()

	if v := q.Get(ParamGenre); v != "" {
		f.Genres = parseInts(v)
	}
	f.YearMin = parseInt(q.Get(ParamYearMin), 0)
	f.YearMax = parseInt(q.Get(ParamYearMax), 0)
	f.RatingMin = parseFloat(q.Get(ParamRatingMin), f.RatingMin)
	f.RatingMax = parseFloat(q.Get(ParamRatingMax), f.RatingMax)
	f.MinVotes = parseInt(q.Get(ParamMinVotes), f.MinVotes)
	f.RuntimeMin = parseInt(q.Get(ParamRuntimeMin), f.RuntimeMin)
	f.RuntimeMax = parseInt(q.Get(ParamRuntimeMax), f.RuntimeMax)
	f.Language = strings.TrimSpace(q.Get(ParamLanguage))
	if v := strings.TrimSpace(q.Get(ParamSortBy)); v != "" {
		f.SortBy = v
	}
	f.Page = parseInt(q.Get(ParamPage), f.Page)
	f.Region = strings.TrimSpace(q.Get(ParamRegion))

	f.Clamp()
	return f
}

func parseInt(value string, defaultValue int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseFloat(value string, defaultValue float64) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultValue
	}
	return f
}

// parseInts parses a comma-separated id list, skipping malformed, non-positive
// and duplicate entries.
func parseInts(value string) []int {
	parts := strings.Split(value, ",")
	ids := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ids = append(ids, n)
	}
	return ids
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
