// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"time"
)

// Method identifiers accepted by Recommend and BatchRecommend.
const (
	MethodUserBased = "user_based"
	MethodTourBased = "tour_based"
	MethodHybrid    = "hybrid"
)

// Method tags reported on individual recommendations.
const (
	methodUserBasedCF      = "user_based_cf"
	methodTourBasedCF      = "tour_based_cf"
	methodHybridCF         = "hybrid_cf"
	methodColdStartPopular = "cold_start_popular"
	methodColdStartSimilar = "cold_start_similar"
	methodPopularFallback  = "popular_fallback"
)

// Interaction is a single recorded user-tour event as loaded from the store.
// CreatedAt may be the zero time when the store has no timestamp; the
// matrix builder then skips time decay for that row.
type Interaction struct {
	UserID    int64
	TourID    int64
	Type      string
	Score     float64
	CreatedAt time.Time
}

// Tour is an eligible (active, approved, not banned) tour with the
// popularity counters used by cold-start ranking.
type Tour struct {
	ID           int64
	Title        string
	Slug         string
	ViewCount    int64
	BookingCount int64
	CategoryID   int64
}

// DataSignature summarizes the interaction data set for content-hash
// cache invalidation. Any change to the counts or the most recent
// interaction timestamp produces a different hash.
type DataSignature struct {
	InteractionCount int64
	TourCount        int64
	UserCount        int64
	LatestCreatedAt  time.Time
}

// DataProvider supplies the engine with interaction data. It is
// implemented by the database store; the indirection keeps this
// package free of SQL and lets tests feed matrices directly.
type DataProvider interface {
	// Interactions returns every recorded interaction.
	Interactions(ctx context.Context) ([]Interaction, error)

	// UserIDs returns all known user ids.
	UserIDs(ctx context.Context) ([]int64, error)

	// EligibleTours returns all active, approved, non-banned tours.
	EligibleTours(ctx context.Context) ([]Tour, error)

	// TourByID returns a tour by id regardless of eligibility, or nil
	// when no such tour exists.
	TourByID(ctx context.Context, id int64) (*Tour, error)

	// DataSignature returns the current interaction data signature.
	DataSignature(ctx context.Context) (DataSignature, error)
}

// Recommendation is a single scored tour returned to callers.
type Recommendation struct {
	TourID      int64   `json:"tour_id"`
	Title       string  `json:"tour_title"`
	Slug        string  `json:"tour_slug"`
	Score       float64 `json:"predicted_score"`
	Method      string  `json:"method"`
	Explanation string  `json:"explanation,omitempty"`
}

// interactionKey identifies the per-pair interaction history retained
// for explanation generation.
type interactionKey struct {
	userID int64
	tourID int64
}

// interactionRecord is one historical event kept in the side table.
// Score is the raw (undecayed) score.
type interactionRecord struct {
	Type      string
	Score     float64
	CreatedAt time.Time
}

// CacheStats reports the engine cache state. Shape and size fields are
// omitted when the corresponding matrix has not been built.
type CacheStats struct {
	MatrixBuilt              bool     `json:"matrix_built"`
	UserSimilarityCalculated bool     `json:"user_similarity_calculated"`
	TourSimilarityCalculated bool     `json:"tour_similarity_calculated"`
	CacheEnabled             bool     `json:"cache_enabled"`
	CacheTTLSeconds          int      `json:"cache_ttl_seconds"`
	MatrixAgeSeconds         *float64 `json:"matrix_age_seconds,omitempty"`
	CacheValid               *bool    `json:"cache_valid,omitempty"`
	MatrixShape              []int    `json:"matrix_shape,omitempty"`
	MatrixSizeMB             *float64 `json:"matrix_size_mb,omitempty"`
	UserSimilarityShape      []int    `json:"user_similarity_shape,omitempty"`
	UserSimilaritySizeMB     *float64 `json:"user_similarity_size_mb,omitempty"`
	TourSimilarityShape      []int    `json:"tour_similarity_shape,omitempty"`
	TourSimilaritySizeMB     *float64 `json:"tour_similarity_size_mb,omitempty"`
}
