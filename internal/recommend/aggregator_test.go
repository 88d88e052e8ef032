// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// mockFetcher returns canned recommendations per seed and records calls.
type mockFetcher struct {
	mu      sync.Mutex
	results map[int64][]tmdb.Movie
	errs    map[int64]error
	calls   []int64
}

func (m *mockFetcher) RecommendationsFor(_ context.Context, movieID int64) ([]tmdb.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, movieID)
	if err := m.errs[movieID]; err != nil {
		return nil, err
	}
	return m.results[movieID], nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func favs(ids ...int64) []favorites.Favorite {
	out := make([]favorites.Favorite, len(ids))
	for i, id := range ids {
		out[i] = favorites.Favorite{MovieID: id}
	}
	return out
}

func movie(id int64, popularity float64) tmdb.Movie {
	return tmdb.Movie{ID: id, Title: "m", Popularity: popularity}
}

func ids(movies []tmdb.Movie) []int64 {
	out := make([]int64, len(movies))
	for i, m := range movies {
		out[i] = m.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecommend_MergesDedupesAndSorts(t *testing.T) {
	t.Parallel()

	const a, b, c = 100, 200, 300
	fetcher := &mockFetcher{results: map[int64][]tmdb.Movie{
		1: {movie(a, 5), movie(b, 9)},
		2: {movie(b, 9), movie(c, 1)},
	}}

	got := NewAggregator(fetcher, nil).Recommend(context.Background(), favs(1, 2))

	if want := []int64{b, a, c}; !equalIDs(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestRecommend_EmptyFavoritesSkipsNetwork(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	got := NewAggregator(fetcher, nil).Recommend(context.Background(), nil)

	if got == nil || len(got) != 0 {
		t.Errorf("Recommend(nil) = %v, want empty non-nil slice", got)
	}
	if n := fetcher.callCount(); n != 0 {
		t.Errorf("fetch calls = %d, want 0", n)
	}
}

func TestRecommend_SeedsCappedAtMaxSeeds(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{}
	NewAggregator(fetcher, nil).Recommend(context.Background(), favs(1, 2, 3, 4, 5, 6, 7))

	if n := fetcher.callCount(); n != DefaultMaxSeeds {
		t.Errorf("fetch calls = %d, want %d", n, DefaultMaxSeeds)
	}

	fetcher = &mockFetcher{}
	NewAggregator(fetcher, &config.RecommendConfig{MaxSeeds: 2, Limit: 12}).
		Recommend(context.Background(), favs(1, 2, 3))
	if n := fetcher.callCount(); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
}

func TestRecommend_FailedBranchIsSkipped(t *testing.T) {
	t.Parallel()

	fetcher := &mockFetcher{
		results: map[int64][]tmdb.Movie{2: {movie(20, 4)}},
		errs:    map[int64]error{1: errors.New("upstream down")},
	}

	got := NewAggregator(fetcher, nil).Recommend(context.Background(), favs(1, 2))
	if want := []int64{20}; !equalIDs(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestRecommend_ExcludesAllFavorites(t *testing.T) {
	t.Parallel()

	// Movie 7 is favorited but beyond the seed cap; it must still be excluded.
	fetcher := &mockFetcher{results: map[int64][]tmdb.Movie{
		1: {movie(7, 50), movie(8, 10)},
	}}
	agg := NewAggregator(fetcher, &config.RecommendConfig{MaxSeeds: 1, Limit: 12})

	got := agg.Recommend(context.Background(), favs(1, 2, 7))
	if want := []int64{8}; !equalIDs(ids(got), want) {
		t.Errorf("Recommend() = %v, want %v", ids(got), want)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		favs  []favorites.Favorite
		lists [][]tmdb.Movie
		limit int
		want  []int64
	}{
		{
			name:  "no lists",
			favs:  favs(1),
			lists: nil,
			limit: 12,
			want:  []int64{},
		},
		{
			name:  "first seen wins",
			favs:  favs(1),
			lists: [][]tmdb.Movie{{{ID: 5, Title: "first", Popularity: 2}}, {{ID: 5, Title: "second", Popularity: 99}}},
			limit: 12,
			want:  []int64{5},
		},
		{
			name:  "missing popularity sorts last, ties stable",
			favs:  favs(1),
			lists: [][]tmdb.Movie{{movie(10, 0), movie(11, 3), movie(12, 0), movie(13, 3)}},
			limit: 12,
			want:  []int64{11, 13, 10, 12},
		},
		{
			name:  "truncated to limit",
			favs:  favs(1),
			lists: [][]tmdb.Movie{{movie(1, 1), movie(2, 2), movie(3, 3), movie(4, 4)}},
			limit: 2,
			want:  []int64{4, 3},
		},
		{
			name:  "invalid ids dropped",
			favs:  favs(9),
			lists: [][]tmdb.Movie{{movie(0, 100), movie(-1, 50), movie(6, 1)}},
			limit: 12,
			want:  []int64{6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Merge(tt.favs, tt.lists, tt.limit)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Merge() = %v, want %v", ids(got), tt.want)
			}
		})
	}

	got := Merge(favs(1), [][]tmdb.Movie{{{ID: 5, Title: "first", Popularity: 2}}, {{ID: 5, Title: "second", Popularity: 99}}}, 12)
	if got[0].Title != "first" || got[0].Popularity != 2 {
		t.Errorf("Merge() kept %+v, want the first occurrence", got[0])
	}
}

func TestMerge_DefaultLimit(t *testing.T) {
	t.Parallel()

	list := make([]tmdb.Movie, 0, 30)
	for i := int64(1); i <= 30; i++ {
		list = append(list, movie(100+i, float64(i)))
	}

	got := Merge(favs(1), [][]tmdb.Movie{list}, DefaultLimit)
	if len(got) != DefaultLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultLimit)
	}
	if got[0].ID != 130 {
		t.Errorf("top = %d, want 130", got[0].ID)
	}
}
