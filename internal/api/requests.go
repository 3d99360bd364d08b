// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

// CreateInteractionRequest is the body for POST /api/v1/interactions.
// Rating is optional except for reviews; when present it refines the
// implicit score derived from the interaction type.
type CreateInteractionRequest struct {
	UserID int64    `json:"user_id" validate:"required,gt=0"`
	TourID int64    `json:"tour_id" validate:"required,gt=0"`
	Type   string   `json:"interaction_type" validate:"required,oneof=view click favorite review book booking paid"`
	Rating *float64 `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

// BatchRecommendationsRequest is the body for
// POST /api/v1/recommendations/batch.
type BatchRecommendationsRequest struct {
	UserIDs []int64 `json:"user_ids" validate:"required,min=1,max=100,dive,gt=0"`
	Method  string  `json:"method" validate:"omitempty,oneof=user_based tour_based hybrid"`
	Limit   int     `json:"limit" validate:"omitempty,gte=1,lte=50"`
}
