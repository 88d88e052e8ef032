// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"cmp"
	"slices"

	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// Merge combines per-seed recommendation lists.
//
// Steps:
//  1. Concatenate lists in seed order; the first occurrence of an id wins.
//  2. Drop every id present in favs (all of them, not only the seeds).
//  3. Stable sort by popularity, highest first.
//  4. Keep at most limit entries (limit <= 0 keeps everything).
func Merge(favs []favorites.Favorite, lists [][]tmdb.Movie, limit int) []tmdb.Movie {
	favorited := favorites.IDSet(favs)
	seen := make(map[int64]struct{})
	merged := []tmdb.Movie{}

	for _, list := range lists {
		for _, m := range list {
			if m.ID <= 0 {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			if _, fav := favorited[m.ID]; fav {
				continue
			}
			merged = append(merged, m)
		}
	}

	slices.SortStableFunc(merged, func(a, b tmdb.Movie) int {
		return cmp.Compare(b.Popularity, a.Popularity)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
