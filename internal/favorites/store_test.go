// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package favorites

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
)

// setupTestStore opens an in-memory store whose clock advances one second
// per call so creation order is deterministic.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}

	store := newStore(db)
	var tick atomic.Int64
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	}

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func movieData(title string) json.RawMessage {
	return json.RawMessage(`{"id":1,"title":"` + title + `"}`)
}

func TestStore_AddAndList(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	for i, id := range []int64{10, 20, 30} {
		fav, err := store.Add(ctx, id, movieData("m"))
		if err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
		if fav.ID == "" {
			t.Errorf("Add(%d) returned empty _id", id)
		}
		if fav.MovieID != id {
			t.Errorf("Add #%d MovieID = %d, want %d", i, fav.MovieID, id)
		}
	}

	favs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []int64{30, 20, 10}
	if len(favs) != len(want) {
		t.Fatalf("List() len = %d, want %d", len(favs), len(want))
	}
	for i, id := range want {
		if favs[i].MovieID != id {
			t.Errorf("List()[%d].MovieID = %d, want %d", i, favs[i].MovieID, id)
		}
	}
	if !favs[0].CreatedAt.After(favs[1].CreatedAt) {
		t.Error("List() should be ordered newest first")
	}
}

func TestStore_ListEmpty(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	favs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if favs == nil || len(favs) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", favs)
	}
}

func TestStore_AddDuplicate(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, 603, movieData("The Matrix"))
	if err != nil {
		t.Fatalf("first Add() error = %v", err)
	}

	_, err = store.Add(ctx, 603, movieData("Other"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second Add() err = %v, want ErrConflict", err)
	}

	favs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(favs) != 1 {
		t.Fatalf("List() len = %d, want 1", len(favs))
	}
	if favs[0].ID != first.ID {
		t.Errorf("duplicate add replaced document: _id = %s, want %s", favs[0].ID, first.ID)
	}
	snap, err := favs[0].Movie()
	if err != nil {
		t.Fatalf("Movie() error = %v", err)
	}
	if snap.Title != "The Matrix" {
		t.Errorf("snapshot title = %q, want The Matrix", snap.Title)
	}
}

func TestStore_AddValidation(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		movieID int64
		data    string
	}{
		{"zero id", 0, `{"title":"x"}`},
		{"negative id", -4, `{"title":"x"}`},
		{"missing data", 5, ``},
		{"null data", 5, `null`},
		{"false data", 5, `false`},
		{"zero data", 5, `0`},
		{"zero float data", 5, `0.0`},
		{"empty string data", 5, `""`},
		{"empty object", 5, `{}`},
		{"empty array", 5, ` [ ] `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Add(ctx, tt.movieID, json.RawMessage(tt.data))
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Add() err = %v, want ErrValidation", err)
			}
		})
	}

	favs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(favs) != 0 {
		t.Errorf("invalid adds mutated the store: %d favorites", len(favs))
	}
}

func TestStore_ConcurrentAddSameID(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	const writers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
		others    atomic.Int32
	)

	start := make(chan struct{})
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.Add(ctx, 42, movieData("race"))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrConflict):
				conflicts.Add(1)
			default:
				others.Add(1)
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Errorf("successes = %d, want 1", got)
	}
	if got := conflicts.Load(); got != writers-1 {
		t.Errorf("conflicts = %d, want %d", got, writers-1)
	}

	favs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(favs) != 1 {
		t.Errorf("List() len = %d, want 1", len(favs))
	}
}

func TestStore_Remove(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2} {
		if _, err := store.Add(ctx, id, movieData("m")); err != nil {
			t.Fatalf("Add(%d) error = %v", id, err)
		}
	}

	deleted, err := store.Remove(ctx, 1)
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Remove() = %d, want 1", deleted)
	}

	deleted, err = store.Remove(ctx, 1)
	if err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("second Remove() = %d, want 0", deleted)
	}

	favs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(favs) != 1 || favs[0].MovieID != 2 {
		t.Errorf("List() = %+v, want only movie 2", favs)
	}

	if _, err := store.Add(ctx, 1, movieData("again")); err != nil {
		t.Errorf("re-adding a removed movie failed: %v", err)
	}
}

func TestStore_Closed(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if store.Available() {
		t.Error("Available() should be false after Close")
	}

	if _, err := store.List(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("List() err = %v, want ErrUnavailable", err)
	}
	if _, err := store.Add(ctx, 1, movieData("m")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Add() err = %v, want ErrUnavailable", err)
	}
	if _, err := store.Remove(ctx, 1); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Remove() err = %v, want ErrUnavailable", err)
	}
	if _, err := store.RunGC(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("RunGC() err = %v, want ErrUnavailable", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestStore_RunGCInMemory(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	rewritten, err := store.RunGC()
	if err != nil {
		t.Fatalf("RunGC() error = %v", err)
	}
	if rewritten {
		t.Error("in-memory GC should not rewrite anything")
	}
}

func TestOpen_OnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := Open(&config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := store.Add(context.Background(), 99, movieData("persisted")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(&config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	favs, err := reopened.List(context.Background())
	if err != nil || len(favs) != 1 || favs[0].MovieID != 99 {
		t.Errorf("List() after reopen = %+v, %v; want movie 99", favs, err)
	}
}
