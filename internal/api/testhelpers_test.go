// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// fakeTMDB records upstream requests and answers from a path table.
type fakeTMDB struct {
	mu       sync.Mutex
	requests []*http.Request
	routes   map[string]string
	status   int
}

func (f *fakeTMDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(r.Context()))
	body, ok := f.routes[r.URL.Path]
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
		return
	}
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeTMDB) last(t *testing.T) *http.Request {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no upstream request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeTMDB) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type testEnv struct {
	server         *httptest.Server
	upstream       *fakeTMDB
	upstreamServer *httptest.Server
	store          *favorites.Store
}

// newTestEnv builds the full router over an in-memory store and a fake
// upstream. withStore=false serves the store as unavailable.
func newTestEnv(t *testing.T, withStore bool) *testEnv {
	t.Helper()

	upstream := &fakeTMDB{routes: map[string]string{
		"/3/trending/movie/week": `{"page":1,"results":[{"id":603,"title":"The Matrix","popularity":80}]}`,
		"/3/movie/603":           `{"id":603,"title":"The Matrix","runtime":136}`,
		"/3/movie/603/reviews":   `{"page":1,"results":[{"id":"r1","author":"a","content":"good"}]}`,
		"/3/discover/movie":      `{"page":1,"results":[]}`,
		"/3/search/movie":        `{"page":1,"results":[{"id":27205,"title":"Inception"}]}`,
		"/3/genre/movie/list":    `{"genres":[{"id":28,"name":"Action"}]}`,

		"/3/movie/603/recommendations": `{"page":1,"results":[{"id":604,"title":"The Matrix Reloaded","popularity":50},{"id":605,"title":"The Matrix Revolutions","popularity":40}]}`,
	}}
	upstreamServer := httptest.NewServer(upstream)
	t.Cleanup(upstreamServer.Close)

	client := tmdb.NewClient(&config.TMDBConfig{
		APIKey:  "test-key",
		BaseURL: upstreamServer.URL + "/3",
		Timeout: 2 * time.Second,
	})

	var store *favorites.Store
	var fs FavoritesStore
	if withStore {
		var err error
		store, err = favorites.OpenInMemory()
		if err != nil {
			t.Fatalf("OpenInMemory() error = %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		fs = store
	}

	handler := NewHandler(client, fs, recommend.NewAggregator(client, nil))
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		RateLimitDisabled:  true,
	})

	server := httptest.NewServer(NewRouter(handler, mw).Setup())
	t.Cleanup(server.Close)

	return &testEnv{server: server, upstream: upstream, upstreamServer: upstreamServer, store: store}
}

// upstreamDown closes the fake upstream so every proxied call fails at the
// transport.
func (e *testEnv) upstreamDown(t *testing.T) {
	t.Helper()
	e.upstreamServer.Close()
}

func (e *testEnv) do(t *testing.T, method, path, body string) (int, []byte, http.Header) {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, rdr)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data, resp.Header
}

func decodeError(t *testing.T, body []byte) string {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return er.Error
}
