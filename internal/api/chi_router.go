// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package api provides the HTTP surface of the service: the metadata proxy,
// the favorites endpoints and health, routed with chi.
//
// Every route is served both at the root and under /api. The legacy
// script-style paths (favorites.php, tmdb_proxy.php, tmdb_search.php,
// filters.php) are kept as aliases so existing frontends keep working.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(OptionsOK)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, msgNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
	})

	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(router.mountAPI)
	r.Route("/api", router.mountAPI)

	return r
}

// mountAPI registers the API endpoints on r.
func (router *Router) mountAPI(r chi.Router) {
	r.Use(router.chiMiddleware.RateLimit())
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	h := router.handler

	// Favorites dispatches on method itself so unsupported methods get the
	// favorites-specific 405 body.
	r.HandleFunc("/favorites", h.Favorites)
	r.HandleFunc("/favorites.php", h.Favorites)
	r.Get("/favorites/recommendations", h.FavoriteRecommendations)

	r.Get("/discover-or-trending", h.DiscoverOrTrending)
	r.Get("/tmdb_proxy.php", h.DiscoverOrTrending)

	r.Get("/search", h.Search)
	r.Get("/tmdb_search.php", h.Search)

	r.Get("/filters", h.Filters)
	r.Get("/filters.php", h.Filters)
}

// accessLog writes one debug line per request through the request-scoped
// logger.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("HTTP request")
	})
}
