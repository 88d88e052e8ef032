// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/favorites"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/validation"
)

// Favorites dispatches /favorites by method:
//
//	GET     list, newest first ([] when the store is unavailable)
//	POST    {movie_id, movie_data} -> {success, insertedId}
//	DELETE  ?movie_id= -> {success, deletedCount}
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listFavorites(w, r)
	case http.MethodPost:
		h.addFavorite(w, r)
	case http.MethodDelete:
		h.removeFavorite(w, r)
	default:
		respondError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
	}
}

// StoreStatusHeader is set to "unavailable" on a GET /favorites answered
// with an empty list because the store could not be read. Clients use it to
// tell "no favorites" from "favorites unreachable".
const StoreStatusHeader = "X-Store-Status"

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	favs, ok := h.loadFavorites(r)
	if !ok {
		w.Header().Set(StoreStatusHeader, "unavailable")
	}
	respondJSON(w, http.StatusOK, favs)
}

// loadFavorites returns the stored favorites, or an empty list and false
// when the store cannot be read.
func (h *Handler) loadFavorites(r *http.Request) ([]favorites.Favorite, bool) {
	if !h.storeAvailable() {
		return []favorites.Favorite{}, false
	}

	favs, err := h.store.List(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Favorites unavailable, serving empty list")
		return []favorites.Favorite{}, false
	}
	return favs, true
}

func (h *Handler) addFavorite(w http.ResponseWriter, r *http.Request) {
	if !h.storeAvailable() {
		respondError(w, r, http.StatusServiceUnavailable, msgStoreUnavailable, nil)
		return
	}

	var req addFavoriteRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, msgFavoriteRequired, nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		logging.Ctx(r.Context()).Debug().Strs("fields", verr.Fields()).Msg(verr.Error())
		respondError(w, r, http.StatusBadRequest, msgFavoriteRequired, nil)
		return
	}

	fav, err := h.store.Add(r.Context(), int64(req.MovieID), req.MovieData)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, AddFavoriteResponse{Success: true, InsertedID: fav.ID})
}

func (h *Handler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	if !h.storeAvailable() {
		respondError(w, r, http.StatusServiceUnavailable, msgStoreUnavailable, nil)
		return
	}
	id := parseMovieID(r.URL.Query().Get("movie_id"))
	if id <= 0 {
		respondError(w, r, http.StatusBadRequest, msgMovieIDParam, nil)
		return
	}

	deleted, err := h.store.Remove(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, RemoveFavoriteResponse{Success: true, DeletedCount: deleted})
}

// FavoriteRecommendations handles GET /favorites/recommendations.
func (h *Handler) FavoriteRecommendations(w http.ResponseWriter, r *http.Request) {
	favs, _ := h.loadFavorites(r)
	respondJSON(w, http.StatusOK, ResultsResponse{Results: h.recommender.Recommend(r.Context(), favs)})
}
