// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wayfarelabs/wayfare/internal/database"
	"github.com/wayfarelabs/wayfare/internal/events"
	"github.com/wayfarelabs/wayfare/internal/recommend"
)

// Limit bounds shared by the recommendation endpoints.
const (
	defaultLimit = 10
	maxLimit     = 50
)

// popularFallbackRatio is the share of the eligible catalog a user
// must have touched before empty CF results fall back to popularity
// ranking. Below it, an empty result means the data is simply too
// sparse, and returning nothing is the honest answer.
const popularFallbackRatio = 0.8

// Handler carries the dependencies shared by all endpoint handlers.
// The event bus is nil when events are disabled.
type Handler struct {
	db        *database.DB
	engine    *recommend.Engine
	events    *events.Service
	startedAt time.Time
}

// NewHandler creates the handler set.
func NewHandler(db *database.DB, engine *recommend.Engine, bus *events.Service) *Handler {
	return &Handler{
		db:        db,
		engine:    engine,
		events:    bus,
		startedAt: time.Now(),
	}
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryLimit parses the limit query parameter, defaulting to 10 and
// rejecting values outside 1..50.
func queryLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, false
	}
	return limit, true
}

// queryMethod parses the method query parameter, defaulting to hybrid.
func queryMethod(r *http.Request) (string, bool) {
	method := r.URL.Query().Get("method")
	if method == "" {
		return recommend.MethodHybrid, true
	}
	switch method {
	case recommend.MethodUserBased, recommend.MethodTourBased, recommend.MethodHybrid:
		return method, true
	}
	return "", false
}
