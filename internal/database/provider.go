// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wayfarelabs/wayfare/internal/metrics"
	"github.com/wayfarelabs/wayfare/internal/recommend"
)

// The store implements recommend.DataProvider.
var _ recommend.DataProvider = (*DB)(nil)

// eligibleTourFilter selects tours the engine may recommend.
const eligibleTourFilter = "active AND approved AND NOT banned"

// Interactions returns every recorded interaction for matrix building.
func (db *DB) Interactions(ctx context.Context) ([]recommend.Interaction, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, tour_id, interaction_type, score, created_at FROM interactions`)
	metrics.ObserveDBQuery("list_interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeQuietly(rows)

	var out []recommend.Interaction
	for rows.Next() {
		var in recommend.Interaction
		if err := rows.Scan(&in.UserID, &in.TourID, &in.Type, &in.Score, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// UserIDs returns the ids of all active users, ordered for stable
// matrix row indices.
func (db *DB) UserIDs(ctx context.Context) ([]int64, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM users WHERE active ORDER BY id`)
	metrics.ObserveDBQuery("list_user_ids", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer closeQuietly(rows)

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return out, nil
}

// EligibleTours returns all recommendable tours, ordered for stable
// matrix column indices.
func (db *DB) EligibleTours(ctx context.Context) ([]recommend.Tour, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, slug, view_count, booking_count, category_id
		 FROM tours WHERE `+eligibleTourFilter+` ORDER BY id`)
	metrics.ObserveDBQuery("list_eligible_tours", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query eligible tours: %w", err)
	}
	defer closeQuietly(rows)

	var out []recommend.Tour
	for rows.Next() {
		var t recommend.Tour
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug, &t.ViewCount, &t.BookingCount, &t.CategoryID); err != nil {
			return nil, fmt.Errorf("scan tour: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tours: %w", err)
	}
	return out, nil
}

// TourByID returns a tour regardless of eligibility, or nil when no
// such tour exists.
func (db *DB) TourByID(ctx context.Context, id int64) (*recommend.Tour, error) {
	start := time.Now()

	var t recommend.Tour
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, slug, view_count, booking_count, category_id FROM tours WHERE id = ?`,
		id).Scan(&t.ID, &t.Title, &t.Slug, &t.ViewCount, &t.BookingCount, &t.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.ObserveDBQuery("get_tour", time.Since(start), nil)
		return nil, nil
	}
	metrics.ObserveDBQuery("get_tour", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query tour %d: %w", id, err)
	}
	return &t, nil
}

// DataSignature summarizes the current data set for content-hash cache
// validation. The tour count covers eligible tours only, matching what
// the matrix builder will load.
func (db *DB) DataSignature(ctx context.Context) (recommend.DataSignature, error) {
	start := time.Now()

	var sig recommend.DataSignature
	var latest sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM interactions),
			(SELECT COUNT(*) FROM tours WHERE `+eligibleTourFilter+`),
			(SELECT COUNT(*) FROM users WHERE active),
			(SELECT MAX(created_at) FROM interactions)`).
		Scan(&sig.InteractionCount, &sig.TourCount, &sig.UserCount, &latest)
	metrics.ObserveDBQuery("data_signature", time.Since(start), err)
	if err != nil {
		return recommend.DataSignature{}, fmt.Errorf("query data signature: %w", err)
	}
	if latest.Valid {
		sig.LatestCreatedAt = latest.Time
	}
	return sig, nil
}
