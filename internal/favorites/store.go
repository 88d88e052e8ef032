// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package favorites persists the user's favorite movies in an embedded BadgerDB.

Storage layout:

	fav:<movie_id, 20 digits>                   -> Favorite JSON document
	favts:<created_at unix nanos, 20 digits>:<_id> -> fav key

The fav: key makes movie_id unique. The favts: index sorts by creation time
so List walks it with a reverse iterator to return newest first.

Add is an insert-if-absent inside a single read-write transaction. When two
writers race on the same movie_id, Badger's optimistic concurrency control
aborts the loser with badger.ErrConflict; the loser retries, observes the
winner's key, and reports ErrConflict.
*/
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/validation"
)

const (
	favKeyPrefix   = "fav:"
	indexKeyPrefix = "favts:"

	// maxTxnRetries bounds retries after badger.ErrConflict.
	maxTxnRetries = 5

	gcDiscardRatio = 0.5
)

// Store is a BadgerDB-backed favorites collection. It is safe for
// concurrent use.
type Store struct {
	db     *badger.DB
	closed atomic.Bool
	now    func() time.Time
}

// Open opens the store described by cfg, on disk or in memory.
func Open(cfg *config.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = newBadgerLogger(logging.WithComponent("badger"))

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger at %q: %w", ErrUnavailable, cfg.Path, err)
	}
	return newStore(db), nil
}

// OpenInMemory opens an ephemeral store.
func OpenInMemory() (*Store, error) {
	return Open(&config.StoreConfig{InMemory: true})
}

func newStore(db *badger.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close releases the underlying database. Later calls return ErrUnavailable.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// Available reports whether the store can serve requests.
func (s *Store) Available() bool {
	return !s.closed.Load() && !s.db.IsClosed()
}

// List returns every favorite, newest first. Equal timestamps are ordered
// by descending _id.
func (s *Store) List(ctx context.Context) (favs []Favorite, err error) {
	defer s.observe("list", time.Now(), &err)

	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	favs = []Favorite{}
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = true
		opts.Prefix = []byte(indexKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(indexKeyPrefix)
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			var favKey []byte
			if err := it.Item().Value(func(val []byte) error {
				favKey = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}

			fav, err := getFavorite(txn, favKey)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			favs = append(favs, *fav)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrUnavailable, err)
	}

	metrics.FavoritesCount.Set(float64(len(favs)))
	return favs, nil
}

// Add inserts a favorite unless movieID is already present. It returns
// ErrValidation for a non-positive id or empty movieData and ErrConflict
// for a duplicate.
func (s *Store) Add(ctx context.Context, movieID int64, movieData json.RawMessage) (fav *Favorite, err error) {
	defer s.observe("add", time.Now(), &err)

	if movieID <= 0 || !validation.TruthyJSON(movieData) {
		return nil, ErrValidation
	}
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	candidate := Favorite{
		ID:        uuid.NewString(),
		MovieID:   movieID,
		MovieData: append(json.RawMessage(nil), movieData...),
		CreatedAt: s.now().UTC(),
	}
	doc, err := json.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal favorite: %w", ErrValidation, err)
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		key := favKey(movieID)
		_, err := txn.Get(key)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get favorite: %w", err)
		}

		if err := txn.Set(key, doc); err != nil {
			return fmt.Errorf("set favorite: %w", err)
		}
		if err := txn.Set(indexKey(candidate.CreatedAt, candidate.ID), key); err != nil {
			return fmt.Errorf("set index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().Int64("movie_id", movieID).Str("id", candidate.ID).Msg("Favorite added")
	return &candidate, nil
}

// Remove deletes the favorite for movieID and returns how many documents
// were deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, movieID int64) (deleted int64, err error) {
	defer s.observe("remove", time.Now(), &err)

	if movieID <= 0 {
		return 0, ErrValidation
	}
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	err = s.update(ctx, func(txn *badger.Txn) error {
		deleted = 0
		key := favKey(movieID)
		fav, err := getFavorite(txn, key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete favorite: %w", err)
		}
		if err := txn.Delete(indexKey(fav.CreatedAt, fav.ID)); err != nil {
			return fmt.Errorf("delete index: %w", err)
		}
		deleted = 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// RunGC reclaims value log space until Badger reports nothing to rewrite.
// It reports whether any file was rewritten.
func (s *Store) RunGC() (bool, error) {
	if s.closed.Load() {
		return false, ErrUnavailable
	}

	rewritten := false
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			break
		}
		if err != nil {
			metrics.StoreGCRuns.WithLabelValues("error").Inc()
			return rewritten, fmt.Errorf("run value log GC: %w", err)
		}
		rewritten = true
	}

	if rewritten {
		metrics.StoreGCRuns.WithLabelValues("rewritten").Inc()
	} else {
		metrics.StoreGCRuns.WithLabelValues("noop").Inc()
	}
	return rewritten, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Available() {
		return ErrUnavailable
	}
	return nil
}

// update runs fn in a read-write transaction, retrying on badger.ErrConflict.
// Errors other than ErrConflict and ErrValidation are wrapped with
// ErrUnavailable.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxTxnRetries; attempt++ {
		if attempt > 0 {
			metrics.StoreTxnRetries.Inc()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}

		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, ErrValidation):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	metrics.RecordStoreOperation(op, errorType(*errp), time.Since(start))
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "unavailable"
	}
}

func getFavorite(txn *badger.Txn, key []byte) (*Favorite, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}

	var fav Favorite
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &fav)
	}); err != nil {
		return nil, fmt.Errorf("decode favorite %s: %w", key, err)
	}
	return &fav, nil
}

func favKey(movieID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", favKeyPrefix, movieID))
}

func indexKey(createdAt time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", indexKeyPrefix, createdAt.UnixNano(), id))
}
