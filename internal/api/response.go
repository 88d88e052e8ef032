// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AddFavoriteResponse is returned by POST /favorites.
type AddFavoriteResponse struct {
	Success    bool   `json:"success"`
	InsertedID string `json:"insertedId"`
}

// RemoveFavoriteResponse is returned by DELETE /favorites.
type RemoveFavoriteResponse struct {
	Success      bool  `json:"success"`
	DeletedCount int64 `json:"deletedCount"`
}

// ResultsResponse wraps a movie list as {"results": [...]}.
type ResultsResponse struct {
	Results []tmdb.Movie `json:"results"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string  `json:"status"`
	Store    string  `json:"store"`
	Upstream string  `json:"upstream"`
	Uptime   float64 `json:"uptime_seconds"`
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes {"error": message}. err, when set, is logged and
// never sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Int("status", status).
			Str("path", r.URL.Path).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondStoreError maps favorites errors to status codes.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, favorites.ErrValidation):
		respondError(w, r, http.StatusBadRequest, msgFavoriteRequired, nil)
	case errors.Is(err, favorites.ErrConflict):
		respondError(w, r, http.StatusConflict, msgFavoriteExists, nil)
	default:
		respondError(w, r, http.StatusServiceUnavailable, msgStoreUnavailable, err)
	}
}

// forwardUpstream relays an upstream reply: status code and body unchanged.
func forwardUpstream(w http.ResponseWriter, r *http.Request, resp *tmdb.Response, err error) {
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgUpstreamFailedStem+upstreamDiagnostic(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write upstream response")
	}
}

// upstreamDiagnostic returns the innermost cause of an upstream failure,
// trimmed to one short line.
func upstreamDiagnostic(err error) string {
	msg := strings.TrimPrefix(err.Error(), tmdb.ErrUpstreamUnavailable.Error()+": ")
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	const maxLen = 200
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

// sanitizeLogValue escapes control characters so request data cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
