// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"math"
	"testing"
	"time"
)

func findRec(recs []Recommendation, tourID int64) *Recommendation {
	for i := range recs {
		if recs[i].TourID == tourID {
			return &recs[i]
		}
	}
	return nil
}

func TestUserBasedExcludesInteractedTours(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.UserBased(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	// User 1 has signal on tours 10 and 20; only 30 may be proposed.
	for _, rec := range recs {
		if rec.TourID != 30 {
			t.Errorf("recommended already-interacted tour %d", rec.TourID)
		}
	}
	if rec := findRec(recs, 30); rec == nil || rec.Score <= 0 {
		t.Error("expected tour 30 with a positive score")
	} else if rec.Method != "user_based_cf" {
		t.Errorf("unexpected method %q", rec.Method)
	}
}

// Two users overlap on exactly one tour. After sparsity zeroing and
// mean centering both rows collapse, so the weighted average has no
// similarity mass and prediction must come from raw co-occurrence.
func TestUserBasedCoOccurrenceFallback(t *testing.T) {
	now := time.Now().UTC()
	provider := &fakeProvider{
		userIDs: []int64{1, 2},
		tours: []Tour{
			{ID: 101, Title: "City Walk", Slug: "city-walk"},
			{ID: 102, Title: "Food Tour", Slug: "food-tour"},
			{ID: 103, Title: "Night Market", Slug: "night-market"},
		},
		interactions: []Interaction{
			{UserID: 1, TourID: 101, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 1, TourID: 102, Type: "book", Score: 5, CreatedAt: now},
			{UserID: 2, TourID: 101, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 2, TourID: 103, Type: "book", Score: 5, CreatedAt: now},
		},
		sig: DataSignature{InteractionCount: 4, TourCount: 3, UserCount: 2, LatestCreatedAt: now},
	}
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.UserBased(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("fallback produced no recommendations")
	}

	rec := findRec(recs, 103)
	if rec == nil {
		t.Fatal("expected tour 103 via co-occurrence with user 2")
	}
	// Co-occurrence score 5 over 2 interacted tours, plus the user
	// mean of 1 restored by denormalization.
	if math.Abs(rec.Score-3.5) > 1e-9 {
		t.Errorf("expected score 3.5, got %v", rec.Score)
	}
	if recs[0].TourID != 103 {
		t.Errorf("expected tour 103 ranked first, got %d", recs[0].TourID)
	}
}

// Same data without preprocessing: the overlap survives, cosine
// similarity is positive, and the weighted-average path carries the
// neighbor's strong signal directly.
func TestUserBasedWeightedAverageWithoutPreprocessing(t *testing.T) {
	now := time.Now().UTC()
	provider := &fakeProvider{
		userIDs: []int64{1, 2},
		tours: []Tour{
			{ID: 101, Title: "City Walk", Slug: "city-walk"},
			{ID: 102, Title: "Food Tour", Slug: "food-tour"},
			{ID: 103, Title: "Night Market", Slug: "night-market"},
		},
		interactions: []Interaction{
			{UserID: 1, TourID: 101, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 1, TourID: 102, Type: "book", Score: 5, CreatedAt: now},
			{UserID: 2, TourID: 101, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 2, TourID: 103, Type: "book", Score: 5, CreatedAt: now},
		},
		sig: DataSignature{InteractionCount: 4, TourCount: 3, UserCount: 2, LatestCreatedAt: now},
	}
	engine := newTestEngine(t, provider, func(c *Config) {
		c.Normalize = false
		c.HandleSparse = false
	})

	recs, err := engine.UserBased(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}

	rec := findRec(recs, 103)
	if rec == nil {
		t.Fatal("expected tour 103 from the weighted average")
	}
	// Single neighbor: prediction equals the neighbor's own score.
	if math.Abs(rec.Score-5) > 1e-9 {
		t.Errorf("expected score 5, got %v", rec.Score)
	}
}

func TestTourBasedExcludesInteractedTours(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.TourBased(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("TourBased: %v", err)
	}
	for _, rec := range recs {
		if rec.TourID != 30 {
			t.Errorf("recommended already-interacted tour %d", rec.TourID)
		}
		if rec.Method != "tour_based_cf" {
			t.Errorf("unexpected method %q", rec.Method)
		}
	}
}

func TestHybridCombinesWeightedScores(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	userRecs, err := engine.UserBased(ctx, 1, 10)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	tourRecs, err := engine.TourBased(ctx, 1, 10)
	if err != nil {
		t.Fatalf("TourBased: %v", err)
	}
	hybrid, err := engine.Hybrid(ctx, 1, 5)
	if err != nil {
		t.Fatalf("Hybrid: %v", err)
	}
	if len(hybrid) == 0 {
		t.Fatal("expected hybrid recommendations")
	}

	for _, rec := range hybrid {
		if rec.Method != "hybrid_cf" {
			t.Errorf("unexpected method %q", rec.Method)
		}

		userScore := 0.0
		if u := findRec(userRecs, rec.TourID); u != nil {
			userScore = u.Score
		}
		tourScore := 0.0
		if tr := findRec(tourRecs, rec.TourID); tr != nil {
			tourScore = tr.Score
		}

		want := 0.5*userScore + 0.5*tourScore
		if math.Abs(rec.Score-want) > 1e-9 {
			t.Errorf("tour %d: hybrid score %v, want %v", rec.TourID, rec.Score, want)
		}
	}
}

func TestHybridFullUserWeightMatchesUserBased(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, func(c *Config) {
		c.HybridUserWeight = 1.0
	})
	ctx := context.Background()

	userRecs, err := engine.UserBased(ctx, 1, 10)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	hybrid, err := engine.Hybrid(ctx, 1, 5)
	if err != nil {
		t.Fatalf("Hybrid: %v", err)
	}

	for _, rec := range hybrid {
		u := findRec(userRecs, rec.TourID)
		want := 0.0
		if u != nil {
			want = u.Score
		}
		if math.Abs(rec.Score-want) > 1e-9 {
			t.Errorf("tour %d: hybrid score %v, want user-based %v", rec.TourID, rec.Score, want)
		}
	}
}

func TestHybridRespectsLimit(t *testing.T) {
	now := time.Now().UTC()
	tours := make([]Tour, 0, 10)
	interactions := make([]Interaction, 0, 30)
	for i := int64(1); i <= 10; i++ {
		tours = append(tours, Tour{ID: i, Title: "Tour", Slug: "tour"})
	}
	// User 1 rates two tours; users 2 and 3 rate everything so every
	// other tour is a candidate.
	interactions = append(interactions,
		Interaction{UserID: 1, TourID: 1, Type: "book", Score: 5, CreatedAt: now},
		Interaction{UserID: 1, TourID: 2, Type: "view", Score: 1, CreatedAt: now},
	)
	for i := int64(1); i <= 10; i++ {
		interactions = append(interactions,
			Interaction{UserID: 2, TourID: i, Type: "view", Score: 1, CreatedAt: now},
			Interaction{UserID: 3, TourID: i, Type: "favorite", Score: 2, CreatedAt: now},
		)
	}
	provider := &fakeProvider{
		userIDs:      []int64{1, 2, 3},
		tours:        tours,
		interactions: interactions,
		sig:          DataSignature{InteractionCount: int64(len(interactions)), TourCount: 10, UserCount: 3, LatestCreatedAt: now},
	}
	engine := newTestEngine(t, provider, func(c *Config) {
		c.Normalize = false
	})

	recs, err := engine.Hybrid(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("Hybrid: %v", err)
	}
	if len(recs) > 3 {
		t.Errorf("limit 3 exceeded: %d recommendations", len(recs))
	}
}

func TestTopScoreIndicesStableOnTies(t *testing.T) {
	scores := []float64{2, 5, 5, 1}
	got := topScoreIndices(scores, 3)
	want := []int{1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topScoreIndices = %v, want %v", got, want)
		}
	}
}

func TestTopSimilarIndicesExcludesSelf(t *testing.T) {
	sims := []float64{0.3, 1.0, 0.8, 0.9}
	got := topSimilarIndices(sims, 1, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	for _, idx := range got {
		if idx == 1 {
			t.Error("self must be excluded")
		}
	}
	if got[0] != 3 || got[1] != 2 {
		t.Errorf("expected [3, 2], got %v", got)
	}
}
