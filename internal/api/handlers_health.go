// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"
)

// Health handles GET /health. The service is "degraded" when the favorites
// store is unavailable or the upstream breaker is open; it still answers 200
// because both conditions are served in degraded form.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	store := "available"
	if !h.storeAvailable() {
		store = "unavailable"
	}

	upstream := "unknown"
	if h.upstream != nil {
		upstream = h.upstream.BreakerState()
	}

	status := "ok"
	if store != "available" || upstream == "open" {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   status,
		Store:    store,
		Upstream: upstream,
		Uptime:   time.Since(h.startTime).Seconds(),
	})
}
