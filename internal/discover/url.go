// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package discover

import (
	"net/url"
	"strconv"
)

// ModeDiscover marks a URL as carrying discovery filters.
const ModeDiscover = "discover"

// Encode writes f as client URL parameters. mode=discover is always set;
// other keys appear only when they differ from Default.
func Encode(f FilterState) url.Values {
	d := Default()
	q := url.Values{}
	q.Set(ParamMode, ModeDiscover)

	if len(f.Genres) > 0 {
		q.Set(ParamGenre, joinInts(f.Genres))
	}
	if f.YearMin > 0 {
		q.Set(ParamYearMin, strconv.Itoa(f.YearMin))
	}
	if f.YearMax > 0 {
		q.Set(ParamYearMax, strconv.Itoa(f.YearMax))
	}
	if f.RatingMin != d.RatingMin {
		q.Set(ParamRatingMin, formatFloat(f.RatingMin))
	}
	if f.RatingMax != d.RatingMax {
		q.Set(ParamRatingMax, formatFloat(f.RatingMax))
	}
	if f.RuntimeMin != d.RuntimeMin {
		q.Set(ParamRuntimeMin, strconv.Itoa(f.RuntimeMin))
	}
	if f.RuntimeMax != d.RuntimeMax {
		q.Set(ParamRuntimeMax, strconv.Itoa(f.RuntimeMax))
	}
	if f.Language != "" {
		q.Set(ParamLanguage, f.Language)
	}
	if f.SortBy != "" && f.SortBy != d.SortBy {
		q.Set(ParamSortBy, f.SortBy)
	}
	if f.Page > d.Page {
		q.Set(ParamPage, strconv.Itoa(f.Page))
	}
	if f.Region != "" {
		q.Set(ParamRegion, f.Region)
	}
	if f.MinVotes != d.MinVotes {
		q.Set(ParamMinVotes, strconv.Itoa(f.MinVotes))
	}
	return q
}

// Decode restores a FilterState from client URL parameters. Decode(Encode(f))
// equals f for any clamped f.
func Decode(q url.Values) FilterState {
	return ParseRequest(q)
}

// HasFilters reports whether q was produced by Encode.
func HasFilters(q url.Values) bool {
	return q.Get(ParamMode) == ModeDiscover
}
