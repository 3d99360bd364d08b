// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package models

import (
	"time"

	"github.com/wayfarelabs/wayfare/internal/recommend"
)

// RecommendationsResponse is the envelope for single-user
// recommendation endpoints.
//
// Example:
//
//	{
//	  "success": true,
//	  "user_id": 42,
//	  "method": "hybrid",
//	  "recommendations": [{"tour_id": 7, "tour_title": "...", "predicted_score": 4.2, ...}],
//	  "count": 10
//	}
//
// Method echoes the requested strategy; each recommendation carries
// the method that actually produced it (a cold-start or fallback tag
// may differ from the request).
type RecommendationsResponse struct {
	Success         bool                       `json:"success"`
	UserID          int64                      `json:"user_id,omitempty"`
	TourID          int64                      `json:"tour_id,omitempty"`
	Method          string                     `json:"method"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
	Message         string                     `json:"message,omitempty"`
}

// BatchRecommendationsResponse is the envelope for the batch endpoint.
// Map keys marshal as strings per JSON object semantics.
type BatchRecommendationsResponse struct {
	Success bool                                 `json:"success"`
	Method  string                               `json:"method"`
	Results map[int64][]recommend.Recommendation `json:"results"`
	Count   int                                  `json:"count"`
}

// CacheStatsResponse wraps the engine cache report.
type CacheStatsResponse struct {
	Success bool                 `json:"success"`
	Stats   recommend.CacheStats `json:"stats"`
}

// MessageResponse is the envelope for operations that return only an
// acknowledgment.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InteractionResponse is the envelope for a single created interaction.
type InteractionResponse struct {
	Success     bool         `json:"success"`
	Interaction *Interaction `json:"interaction,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// InteractionListResponse is the envelope for per-user and per-tour
// interaction listings.
type InteractionListResponse struct {
	Success      bool          `json:"success"`
	UserID       int64         `json:"user_id,omitempty"`
	TourID       int64         `json:"tour_id,omitempty"`
	Interactions []Interaction `json:"interactions"`
	Count        int           `json:"count"`
}

// InteractionStatsResponse is the envelope for the stats endpoint.
type InteractionStatsResponse struct {
	Success bool             `json:"success"`
	Stats   InteractionStats `json:"stats"`
}

// DeleteResponse is the envelope for interaction deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Scope   string `json:"scope"`
	Deleted int64  `json:"deleted"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the envelope for liveness and readiness probes.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// APIError carries structured error details.
//
// Common codes: VALIDATION_ERROR, NOT_FOUND, DATABASE_ERROR,
// AUTHENTICATION_ERROR, INTERNAL_ERROR, RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the envelope for all error replies.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}
