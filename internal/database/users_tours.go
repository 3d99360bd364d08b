// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/wayfarelabs/wayfare/internal/metrics"
	"github.com/wayfarelabs/wayfare/internal/models"
)

// UserExists reports whether a user row exists, active or not.
// Interaction writes and recommendation reads both gate on this.
func (db *DB) UserExists(ctx context.Context, userID int64) (bool, error) {
	start := time.Now()
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&count)
	metrics.ObserveDBQuery("user_exists", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("query user %d: %w", userID, err)
	}
	return count > 0, nil
}

// UpsertUser inserts or replaces a user row. A zero CreatedAt is set to
// the current time.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO users (id, email, name, active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Active, u.CreatedAt)
	metrics.ObserveDBQuery("upsert_user", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return nil
}

// UpsertTour inserts or replaces a tour row. A zero CreatedAt is set to
// the current time.
func (db *DB) UpsertTour(ctx context.Context, t *models.Tour) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO tours
			(id, title, slug, category_id, active, approved, banned, view_count, booking_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Slug, t.CategoryID, t.Active, t.Approved, t.Banned,
		t.ViewCount, t.BookingCount, t.CreatedAt)
	metrics.ObserveDBQuery("upsert_tour", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert tour %d: %w", t.ID, err)
	}
	return nil
}
