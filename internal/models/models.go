// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package models

import "time"

// User is a row in the users table.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Tour is a row in the tours table. Only active, approved, non-banned
// tours are eligible for recommendation.
type Tour struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	CategoryID   int64     `json:"category_id"`
	Active       bool      `json:"active"`
	Approved     bool      `json:"approved"`
	Banned       bool      `json:"banned"`
	ViewCount    int64     `json:"view_count"`
	BookingCount int64     `json:"booking_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Interaction is a row in the interactions table. Rating is set only
// for explicit rating interactions; Score is the weight derived from
// the type or rating at write time.
type Interaction struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	TourID    int64     `json:"tour_id"`
	Type      string    `json:"interaction_type"`
	Rating    *float64  `json:"rating,omitempty"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// InteractionStats summarizes the interactions table for the stats
// endpoint.
type InteractionStats struct {
	Total       int64            `json:"total"`
	ByType      map[string]int64 `json:"by_type"`
	UniqueUsers int64            `json:"unique_users"`
	UniqueTours int64            `json:"unique_tours"`
	OldestAt    *time.Time       `json:"oldest_at,omitempty"`
	NewestAt    *time.Time       `json:"newest_at,omitempty"`
}
