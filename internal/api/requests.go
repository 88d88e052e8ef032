// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// maxRequestBodySize caps POST bodies.
const maxRequestBodySize = 1 << 20

// movieID accepts a JSON number or a numeric string. Anything else decodes
// to 0 so validation reports the field as missing.
type movieID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *movieID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*id = 0
			return nil
		}
		*id = movieID(parseMovieID(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || f >= math.MaxInt64 || f <= math.MinInt64 || math.IsNaN(f) {
		*id = 0
		return nil
	}
	*id = movieID(int64(f))
	return nil
}

// addFavoriteRequest is the POST /favorites body.
type addFavoriteRequest struct {
	MovieID   movieID         `json:"movie_id" validate:"gt=0"`
	MovieData json.RawMessage `json:"movie_data" validate:"truthy_json"`
}

// parseMovieID reads the leading integer of s, the way query string ids
// are read: "42" and "42abc" give 42, "4.7" gives 4, garbage gives 0.
func parseMovieID(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
