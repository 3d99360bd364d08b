// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

import (
	"errors"
	"net/http"

	"github.com/wayfarelabs/wayfare/internal/logging"
	"github.com/wayfarelabs/wayfare/internal/metrics"
	"github.com/wayfarelabs/wayfare/internal/models"
	"github.com/wayfarelabs/wayfare/internal/recommend"
	"github.com/wayfarelabs/wayfare/internal/validation"
)

// Recommendations serves GET /api/v1/recommendations/{userID}.
//
// Users with no history get cold-start popularity ranking. Users whose
// collaborative filtering comes back empty after interacting with most
// of the catalog get the popularity fallback instead of an empty list.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id must be a positive integer")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 50")
		return
	}
	method, ok := queryMethod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "method must be user_based, tour_based, or hybrid")
		return
	}

	exists, err := h.db.UserExists(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to look up user")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	interactionCount, err := h.db.CountUserInteractions(ctx, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to count interactions")
		return
	}

	resp := models.RecommendationsResponse{
		Success: true,
		UserID:  userID,
		Method:  method,
	}

	if interactionCount == 0 {
		recs, err := h.engine.ColdStartUser(ctx, userID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "cold start recommendation failed")
			return
		}
		resp.Method = "cold_start_popular"
		resp.Recommendations = recs
		resp.Count = len(recs)
		resp.Message = "new user, showing popular tours"
		metrics.RecommendationsServed.WithLabelValues("cold_start").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	recs, err := h.engine.Recommend(ctx, userID, method, limit)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("recommendation failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "recommendation failed")
		return
	}

	if len(recs) == 0 {
		eligible, err := h.db.CountEligibleTours(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to count tours")
			return
		}
		if eligible > 0 && float64(interactionCount) >= popularFallbackRatio*float64(eligible) {
			recs, err = h.engine.PopularFallback(ctx, limit)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "popular fallback failed")
				return
			}
			resp.Method = "popular_fallback"
			resp.Message = "interaction history covers most tours, showing popular ones"
		}
	}

	resp.Recommendations = recs
	resp.Count = len(recs)
	metrics.RecommendationsServed.WithLabelValues(method).Inc()
	writeJSON(w, http.StatusOK, resp)
}

// SimilarTours serves GET /api/v1/tours/{tourID}/similar with
// same-category tours ranked by views, for tour detail pages.
func (h *Handler) SimilarTours(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tourID, ok := pathID(r, "tourID")
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "tour id must be a positive integer")
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 50")
		return
	}

	recs, err := h.engine.ColdStartTour(ctx, tourID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownTour) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "tour not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "similar tour lookup failed")
		return
	}

	metrics.RecommendationsServed.WithLabelValues("tour_similar").Inc()
	writeJSON(w, http.StatusOK, models.RecommendationsResponse{
		Success:         true,
		TourID:          tourID,
		Method:          "cold_start_similar",
		Recommendations: recs,
		Count:           len(recs),
	})
}

// BatchRecommendations serves POST /api/v1/recommendations/batch.
// Unknown users in the batch yield empty slices rather than failing
// the whole request.
func (h *Handler) BatchRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchRecommendationsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}

	method := req.Method
	if method == "" {
		method = recommend.MethodHybrid
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	results, err := h.engine.BatchRecommend(ctx, req.UserIDs, method, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidMethod) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("batch recommendation failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "batch recommendation failed")
		return
	}

	metrics.RecommendationsServed.WithLabelValues("batch").Inc()
	writeJSON(w, http.StatusOK, models.BatchRecommendationsResponse{
		Success: true,
		Method:  method,
		Results: results,
		Count:   len(results),
	})
}

// CacheStats serves GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.CacheStatsResponse{
		Success: true,
		Stats:   h.engine.CacheStats(),
	})
}

// InvalidateCache serves POST /api/v1/cache/invalidate. With
// rebuild=true the matrix is rebuilt synchronously before responding.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.engine.InvalidateCache()

	message := "cache invalidated"
	if r.URL.Query().Get("rebuild") == "true" {
		if err := h.engine.BuildMatrix(r.Context(), true); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("matrix rebuild failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "matrix rebuild failed")
			return
		}
		message = "cache invalidated and matrix rebuilt"
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{
		Success: true,
		Message: message,
	})
}
