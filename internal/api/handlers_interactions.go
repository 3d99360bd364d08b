// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wayfarelabs/wayfare/internal/events"
	"github.com/wayfarelabs/wayfare/internal/logging"
	"github.com/wayfarelabs/wayfare/internal/models"
	"github.com/wayfarelabs/wayfare/internal/recommend"
	"github.com/wayfarelabs/wayfare/internal/validation"
)

// historyLimit caps interaction listings.
const historyLimit = 100

// CreateInteraction serves POST /api/v1/interactions. The implicit
// score is derived from the interaction type and optional rating, and
// the engine cache is invalidated so the next recommendation sees the
// new data.
func (h *Handler) CreateInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateInteractionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeValidationError(w, verr)
		return
	}
	if req.Type == "review" && req.Rating == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "review interactions require a rating")
		return
	}

	exists, err := h.db.UserExists(ctx, req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to look up user")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}

	tour, err := h.db.TourByID(ctx, req.TourID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to look up tour")
		return
	}
	if tour == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "tour not found")
		return
	}

	interaction := models.Interaction{
		UserID: req.UserID,
		TourID: req.TourID,
		Type:   req.Type,
		Rating: req.Rating,
		Score:  float64(recommend.InteractionScore(req.Type, req.Rating)),
	}
	if err := h.db.CreateInteraction(ctx, &interaction); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("create interaction failed")
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to store interaction")
		return
	}

	h.engine.InvalidateCache()
	h.publishCreated(ctx, &interaction)

	writeJSON(w, http.StatusCreated, models.InteractionResponse{
		Success:     true,
		Interaction: &interaction,
	})
}

// publishCreated emits a created event when the bus is enabled.
// Delivery is best effort; the interaction is already durable.
func (h *Handler) publishCreated(ctx context.Context, in *models.Interaction) {
	if h.events == nil {
		return
	}
	ev := events.NewInteractionEvent()
	ev.UserID = in.UserID
	ev.TourID = in.TourID
	ev.Type = in.Type
	ev.Score = in.Score
	if err := h.events.PublishInteractionCreated(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("publish interaction created event")
	}
}

// publishDeleted emits a deleted event when the bus is enabled.
func (h *Handler) publishDeleted(ctx context.Context, scope string, userID, tourID, deleted int64) {
	if h.events == nil {
		return
	}
	ev := events.NewInteractionEvent()
	ev.Scope = scope
	ev.UserID = userID
	ev.TourID = tourID
	ev.Deleted = deleted
	if err := h.events.PublishInteractionDeleted(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("publish interaction deleted event")
	}
}

// UserInteractions serves GET /api/v1/interactions/user/{userID}.
func (h *Handler) UserInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := pathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id must be a positive integer")
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

	interactions, err := h.db.InteractionsByUser(ctx, userID, historyLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to list interactions")
		return
	}

	writeJSON(w, http.StatusOK, models.InteractionListResponse{
		Success:      true,
		UserID:       userID,
		Interactions: interactions,
		Count:        len(interactions),
	})
}

// TourInteractions serves GET /api/v1/interactions/tour/{tourID}.
func (h *Handler) TourInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tourID, ok := pathID(r, "tourID")
	if !ok {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "tour id must be a positive integer")
		return
	}

	tour, err := h.db.TourByID(ctx, tourID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to look up tour")
		return
	}
	if tour == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "tour not found")
		return
	}

	interactions, err := h.db.InteractionsByTour(ctx, tourID, historyLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to list interactions")
		return
	}

	writeJSON(w, http.StatusOK, models.InteractionListResponse{
		Success:      true,
		TourID:       tourID,
		Interactions: interactions,
		Count:        len(interactions),
	})
}

// InteractionStats serves GET /api/v1/interactions/stats.
func (h *Handler) InteractionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.InteractionStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to summarize interactions")
		return
	}
	writeJSON(w, http.StatusOK, models.InteractionStatsResponse{
		Success: true,
		Stats:   stats,
	})
}

// DeleteInteractions serves DELETE /api/v1/interactions. The scope
// query parameter selects what is removed:
//
//	scope=all                 everything
//	scope=user&user_id=N      one user's history
//	scope=tour&tour_id=N      one tour's history
//	scope=age&days=N          interactions older than N days
//
// All scopes require confirm=true; deletion is irreversible.
func (h *Handler) DeleteInteractions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if q.Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "deletion requires confirm=true")
		return
	}

	scope := q.Get("scope")
	var (
		deleted        int64
		err            error
		userID, tourID int64
	)

	switch scope {
	case events.ScopeAll:
		deleted, err = h.db.DeleteAllInteractions(ctx)

	case events.ScopeUser:
		userID, err = strconv.ParseInt(q.Get("user_id"), 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "scope=user requires a positive user_id")
			return
		}
		deleted, err = h.db.DeleteUserInteractions(ctx, userID)

	case events.ScopeTour:
		tourID, err = strconv.ParseInt(q.Get("tour_id"), 10, 64)
		if err != nil || tourID <= 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "scope=tour requires a positive tour_id")
			return
		}
		deleted, err = h.db.DeleteTourInteractions(ctx, tourID)

	case events.ScopeAge:
		days, perr := strconv.Atoi(q.Get("days"))
		if perr != nil || days <= 0 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "scope=age requires a positive days value")
			return
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		deleted, err = h.db.DeleteInteractionsOlderThan(ctx, cutoff)

	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "scope must be all, user, tour, or age")
		return
	}

	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("scope", scope).Msg("delete interactions failed")
		writeError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to delete interactions")
		return
	}

	if deleted > 0 {
		h.engine.InvalidateCache()
		h.publishDeleted(ctx, scope, userID, tourID, deleted)
	}

	writeJSON(w, http.StatusOK, models.DeleteResponse{
		Success: true,
		Scope:   scope,
		Deleted: deleted,
	})
}
