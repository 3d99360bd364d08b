// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/wayfarelabs/wayfare/internal/metrics"
)

const (
	coldStartUserExplanation   = "Most popular tours - a good match for new users"
	popularFallbackExplanation = "You have interacted with most tours; showing the most popular ones"
)

// ColdStartUser recommends the most popular eligible tours to a user
// with no interaction history. Popularity is view count, booking count
// breaking ties; the score is view_count + 2*booking_count.
func (e *Engine) ColdStartUser(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	recs, err := e.popularTours(ctx, limit, methodColdStartPopular, coldStartUserExplanation)
	if err != nil {
		return nil, err
	}
	e.logger.Debug().Int64("user_id", userID).Int("count", len(recs)).Msg("cold start recommendations served")
	metrics.RecommendationsServed.WithLabelValues(methodColdStartPopular).Add(float64(len(recs)))
	return recs, nil
}

// PopularFallback returns the popularity ranking used when CF yields
// nothing for a user who has already interacted with nearly every
// tour.
func (e *Engine) PopularFallback(ctx context.Context, limit int) ([]Recommendation, error) {
	recs, err := e.popularTours(ctx, limit, methodPopularFallback, popularFallbackExplanation)
	if err != nil {
		return nil, err
	}
	metrics.RecommendationsServed.WithLabelValues(methodPopularFallback).Add(float64(len(recs)))
	return recs, nil
}

func (e *Engine) popularTours(ctx context.Context, limit int, method, explanation string) ([]Recommendation, error) {
	tours, err := e.provider.EligibleTours(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tours: %w", err)
	}

	sort.SliceStable(tours, func(i, j int) bool {
		if tours[i].ViewCount != tours[j].ViewCount {
			return tours[i].ViewCount > tours[j].ViewCount
		}
		return tours[i].BookingCount > tours[j].BookingCount
	})
	if len(tours) > limit {
		tours = tours[:limit]
	}

	recs := make([]Recommendation, 0, len(tours))
	for _, tour := range tours {
		recs = append(recs, Recommendation{
			TourID:      tour.ID,
			Title:       tour.Title,
			Slug:        tour.Slug,
			Score:       float64(tour.ViewCount + tour.BookingCount*2),
			Method:      method,
			Explanation: explanation,
		})
	}
	return recs, nil
}

// ColdStartTour recommends eligible tours from the same category as
// the given tour, ranked by view count, excluding the tour itself.
// Used for tours that have no interactions yet.
func (e *Engine) ColdStartTour(ctx context.Context, tourID int64, limit int) ([]Recommendation, error) {
	anchor, err := e.provider.TourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("load tour %d: %w", tourID, err)
	}
	if anchor == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTour, tourID)
	}

	tours, err := e.provider.EligibleTours(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tours: %w", err)
	}

	sameCategory := make([]Tour, 0)
	for _, t := range tours {
		if t.ID != tourID && t.CategoryID == anchor.CategoryID {
			sameCategory = append(sameCategory, t)
		}
	}
	sort.SliceStable(sameCategory, func(i, j int) bool {
		return sameCategory[i].ViewCount > sameCategory[j].ViewCount
	})
	if len(sameCategory) > limit {
		sameCategory = sameCategory[:limit]
	}

	explanation := fmt.Sprintf("Similar to tour '%s...' (same category)", truncateAt(anchor.Title, 50))

	recs := make([]Recommendation, 0, len(sameCategory))
	for _, tour := range sameCategory {
		recs = append(recs, Recommendation{
			TourID:      tour.ID,
			Title:       tour.Title,
			Slug:        tour.Slug,
			Score:       float64(tour.ViewCount),
			Method:      methodColdStartSimilar,
			Explanation: explanation,
		})
	}

	metrics.RecommendationsServed.WithLabelValues(methodColdStartSimilar).Add(float64(len(recs)))
	return recs, nil
}

// truncateAt cuts a string to at most max runes with no ellipsis; the
// caller controls suffix formatting.
func truncateAt(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
