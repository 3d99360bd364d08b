// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wayfarelabs/wayfare/internal/metrics"
	"github.com/wayfarelabs/wayfare/internal/models"
)

// CreateInteraction persists a new interaction. A missing ID or
// CreatedAt is filled in before the insert.
func (db *DB) CreateInteraction(ctx context.Context, in *models.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions (id, user_id, tour_id, interaction_type, rating, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.UserID, in.TourID, in.Type, in.Rating, in.Score, in.CreatedAt)
	metrics.ObserveDBQuery("create_interaction", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// interactionColumns is the scan order shared by the listing queries.
const interactionColumns = "id, user_id, tour_id, interaction_type, rating, score, created_at"

func scanInteractions(rows *sql.Rows) ([]models.Interaction, error) {
	var out []models.Interaction
	for rows.Next() {
		var in models.Interaction
		if err := rows.Scan(&in.ID, &in.UserID, &in.TourID, &in.Type, &in.Rating, &in.Score, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction row: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interaction rows: %w", err)
	}
	return out, nil
}

// InteractionsByUser returns a user's interactions, newest first.
func (db *DB) InteractionsByUser(ctx context.Context, userID int64, limit int) ([]models.Interaction, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	metrics.ObserveDBQuery("interactions_by_user", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query interactions for user %d: %w", userID, err)
	}
	defer closeQuietly(rows)
	return scanInteractions(rows)
}

// InteractionsByTour returns a tour's interactions, newest first.
func (db *DB) InteractionsByTour(ctx context.Context, tourID int64, limit int) ([]models.Interaction, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions
		 WHERE tour_id = ? ORDER BY created_at DESC LIMIT ?`,
		tourID, limit)
	metrics.ObserveDBQuery("interactions_by_tour", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query interactions for tour %d: %w", tourID, err)
	}
	defer closeQuietly(rows)
	return scanInteractions(rows)
}

// CountUserInteractions returns the total number of interactions the
// user has recorded. The popular-fallback decision compares this count
// against the eligible tour count.
func (db *DB) CountUserInteractions(ctx context.Context, userID int64) (int64, error) {
	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM interactions WHERE user_id = ?`, userID).Scan(&count)
	metrics.ObserveDBQuery("count_user_interactions", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count interactions for user %d: %w", userID, err)
	}
	return count, nil
}

// CountEligibleTours returns the number of recommendable tours.
func (db *DB) CountEligibleTours(ctx context.Context) (int64, error) {
	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tours WHERE `+eligibleTourFilter).Scan(&count)
	metrics.ObserveDBQuery("count_eligible_tours", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count eligible tours: %w", err)
	}
	return count, nil
}

// DeleteAllInteractions removes every interaction and returns the
// number of rows deleted.
func (db *DB) DeleteAllInteractions(ctx context.Context) (int64, error) {
	return db.deleteInteractions(ctx, "delete_all_interactions",
		`DELETE FROM interactions`)
}

// DeleteUserInteractions removes one user's interactions.
func (db *DB) DeleteUserInteractions(ctx context.Context, userID int64) (int64, error) {
	return db.deleteInteractions(ctx, "delete_user_interactions",
		`DELETE FROM interactions WHERE user_id = ?`, userID)
}

// DeleteTourInteractions removes one tour's interactions.
func (db *DB) DeleteTourInteractions(ctx context.Context, tourID int64) (int64, error) {
	return db.deleteInteractions(ctx, "delete_tour_interactions",
		`DELETE FROM interactions WHERE tour_id = ?`, tourID)
}

// DeleteInteractionsOlderThan removes interactions created before the
// cutoff.
func (db *DB) DeleteInteractionsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return db.deleteInteractions(ctx, "delete_old_interactions",
		`DELETE FROM interactions WHERE created_at < ?`, cutoff)
}

func (db *DB) deleteInteractions(ctx context.Context, op, query string, args ...interface{}) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query, args...)
	metrics.ObserveDBQuery(op, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return affected, nil
}

// InteractionStats summarizes the interactions table.
func (db *DB) InteractionStats(ctx context.Context) (models.InteractionStats, error) {
	start := time.Now()

	stats := models.InteractionStats{ByType: make(map[string]int64)}

	var oldest, newest sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id), COUNT(DISTINCT tour_id),
		       MIN(created_at), MAX(created_at)
		FROM interactions`).
		Scan(&stats.Total, &stats.UniqueUsers, &stats.UniqueTours, &oldest, &newest)
	if err != nil {
		metrics.ObserveDBQuery("interaction_stats", time.Since(start), err)
		return stats, fmt.Errorf("query interaction stats: %w", err)
	}
	if oldest.Valid {
		stats.OldestAt = &oldest.Time
	}
	if newest.Valid {
		stats.NewestAt = &newest.Time
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT interaction_type, COUNT(*) FROM interactions GROUP BY interaction_type`)
	metrics.ObserveDBQuery("interaction_stats", time.Since(start), err)
	if err != nil {
		return stats, fmt.Errorf("query interaction type counts: %w", err)
	}
	defer closeQuietly(rows)

	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return stats, fmt.Errorf("scan type count: %w", err)
		}
		stats.ByType[typ] = count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate type counts: %w", err)
	}

	return stats, nil
}
