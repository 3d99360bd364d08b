// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeProvider is an in-memory DataProvider for engine tests.
type fakeProvider struct {
	interactions []Interaction
	userIDs      []int64
	tours        []Tour
	sig          DataSignature

	interactionCalls atomic.Int64
	signatureCalls   atomic.Int64

	failInteractions bool
}

func (f *fakeProvider) Interactions(_ context.Context) ([]Interaction, error) {
	f.interactionCalls.Add(1)
	if f.failInteractions {
		return nil, errors.New("store unavailable")
	}
	return f.interactions, nil
}

func (f *fakeProvider) UserIDs(_ context.Context) ([]int64, error) {
	return f.userIDs, nil
}

func (f *fakeProvider) EligibleTours(_ context.Context) ([]Tour, error) {
	return f.tours, nil
}

func (f *fakeProvider) TourByID(_ context.Context, id int64) (*Tour, error) {
	for _, t := range f.tours {
		if t.ID == id {
			tour := t
			return &tour, nil
		}
	}
	return nil, nil
}

func (f *fakeProvider) DataSignature(_ context.Context) (DataSignature, error) {
	f.signatureCalls.Add(1)
	return f.sig, nil
}

// sharedTastes returns a provider with two users who overlap on two
// tours, enough signal to survive sparsity handling.
func sharedTastes() *fakeProvider {
	now := time.Now().UTC()
	return &fakeProvider{
		userIDs: []int64{1, 2, 3},
		tours: []Tour{
			{ID: 10, Title: "Halong Bay Cruise", Slug: "halong-bay", ViewCount: 100, BookingCount: 10, CategoryID: 1},
			{ID: 20, Title: "Sapa Trek", Slug: "sapa-trek", ViewCount: 50, BookingCount: 5, CategoryID: 1},
			{ID: 30, Title: "Mekong Delta Tour", Slug: "mekong-delta", ViewCount: 30, BookingCount: 3, CategoryID: 2},
		},
		interactions: []Interaction{
			{UserID: 1, TourID: 10, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 1, TourID: 20, Type: "book", Score: 5, CreatedAt: now},
			{UserID: 2, TourID: 10, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 2, TourID: 20, Type: "favorite", Score: 2, CreatedAt: now},
			{UserID: 2, TourID: 30, Type: "book", Score: 5, CreatedAt: now},
			{UserID: 3, TourID: 10, Type: "view", Score: 1, CreatedAt: now},
			{UserID: 3, TourID: 30, Type: "view", Score: 1, CreatedAt: now},
		},
		sig: DataSignature{InteractionCount: 7, TourCount: 3, UserCount: 3, LatestCreatedAt: now},
	}
}

func newTestEngine(t *testing.T, provider DataProvider, mutate func(*Config)) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.UseTimeDecay = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New(provider, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine
}

func TestEngineServesFromCacheWithinTTL(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	if got := provider.interactionCalls.Load(); got != 1 {
		t.Errorf("expected 1 interaction load, got %d", got)
	}
}

func TestEngineForceRebuild(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if err := engine.BuildMatrix(ctx, true); err != nil {
		t.Fatalf("BuildMatrix(force): %v", err)
	}

	if got := provider.interactionCalls.Load(); got != 2 {
		t.Errorf("expected 2 interaction loads after force rebuild, got %d", got)
	}
}

func TestEngineHashRevalidationAfterTTL(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, func(c *Config) {
		c.CacheTTL = time.Nanosecond
	})
	ctx := context.Background()

	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	time.Sleep(time.Millisecond)

	// TTL elapsed but the data signature is unchanged: no reload.
	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if got := provider.interactionCalls.Load(); got != 1 {
		t.Errorf("expected hash revalidation without reload, got %d loads", got)
	}

	// Changed signature forces a rebuild.
	provider.sig.InteractionCount++
	time.Sleep(time.Millisecond)
	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if got := provider.interactionCalls.Load(); got != 2 {
		t.Errorf("expected rebuild after signature change, got %d loads", got)
	}
}

func TestEngineFailedBuildKeepsPriorState(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	if err := engine.BuildMatrix(ctx, false); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}

	provider.failInteractions = true
	if err := engine.BuildMatrix(ctx, true); err == nil {
		t.Fatal("expected error from failed build")
	}

	stats := engine.CacheStats()
	if !stats.MatrixBuilt {
		t.Error("failed build must not clear the prior cache state")
	}
}

func TestInvalidateCacheClearsStats(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	if _, err := engine.Hybrid(ctx, 1, 5); err != nil {
		t.Fatalf("Hybrid: %v", err)
	}

	stats := engine.CacheStats()
	if !stats.MatrixBuilt {
		t.Fatal("expected matrix built after recommend")
	}
	if stats.MatrixShape == nil {
		t.Fatal("expected matrix shape reported")
	}

	engine.InvalidateCache()

	stats = engine.CacheStats()
	if stats.MatrixBuilt {
		t.Error("expected matrix_built=false after invalidation")
	}
	if stats.UserSimilarityCalculated || stats.TourSimilarityCalculated {
		t.Error("expected similarity flags cleared")
	}
	if stats.MatrixShape != nil || stats.MatrixAgeSeconds != nil {
		t.Error("expected shape and age omitted after invalidation")
	}
}

func TestCacheStatsShapes(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	if _, err := engine.UserBased(ctx, 1, 5); err != nil {
		t.Fatalf("UserBased: %v", err)
	}

	stats := engine.CacheStats()
	if got := stats.MatrixShape; len(got) != 2 || got[0] != 3 || got[1] != 3 {
		t.Errorf("unexpected matrix shape %v", got)
	}
	if !stats.UserSimilarityCalculated {
		t.Error("expected user similarity calculated")
	}
	if stats.CacheTTLSeconds != 3600 {
		t.Errorf("expected TTL 3600s, got %d", stats.CacheTTLSeconds)
	}
	if stats.MatrixSizeMB == nil || *stats.MatrixSizeMB <= 0 {
		t.Error("expected positive matrix size")
	}
}

func TestEmptyDataYieldsEmptyRecommendations(t *testing.T) {
	provider := &fakeProvider{}
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.UserBased(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("UserBased: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %d", len(recs))
	}
}

func TestRecommendInvalidMethod(t *testing.T) {
	engine := newTestEngine(t, sharedTastes(), nil)

	_, err := engine.Recommend(context.Background(), 1, "quantum", 5)
	if !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("expected ErrInvalidMethod, got %v", err)
	}
}

func TestColdStartUserRanking(t *testing.T) {
	provider := &fakeProvider{
		userIDs: []int64{99},
		tours: []Tour{
			{ID: 2, Title: "B", Slug: "b", ViewCount: 50, BookingCount: 5},
			{ID: 1, Title: "A", Slug: "a", ViewCount: 100, BookingCount: 10},
		},
	}
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.ColdStartUser(context.Background(), 99, 10)
	if err != nil {
		t.Fatalf("ColdStartUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].TourID != 1 || recs[1].TourID != 2 {
		t.Errorf("expected order [1, 2], got [%d, %d]", recs[0].TourID, recs[1].TourID)
	}
	if recs[0].Score != 120 || recs[1].Score != 60 {
		t.Errorf("expected scores [120, 60], got [%v, %v]", recs[0].Score, recs[1].Score)
	}
	if recs[0].Method != "cold_start_popular" {
		t.Errorf("unexpected method %q", recs[0].Method)
	}
}

func TestColdStartTourSameCategory(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)

	recs, err := engine.ColdStartTour(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("ColdStartTour: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 same-category tour, got %d", len(recs))
	}
	if recs[0].TourID != 20 {
		t.Errorf("expected tour 20, got %d", recs[0].TourID)
	}
	if recs[0].Method != "cold_start_similar" {
		t.Errorf("unexpected method %q", recs[0].Method)
	}
	if recs[0].Score != 50 {
		t.Errorf("expected view-count score 50, got %v", recs[0].Score)
	}
}

func TestColdStartTourUnknown(t *testing.T) {
	engine := newTestEngine(t, sharedTastes(), nil)

	_, err := engine.ColdStartTour(context.Background(), 404, 5)
	if !errors.Is(err, ErrUnknownTour) {
		t.Errorf("expected ErrUnknownTour, got %v", err)
	}
}

func TestBatchMatchesSingleUser(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)
	ctx := context.Background()

	batch, err := engine.BatchRecommend(ctx, []int64{1, 2}, MethodHybrid, 5)
	if err != nil {
		t.Fatalf("BatchRecommend: %v", err)
	}

	for _, userID := range []int64{1, 2} {
		single, err := engine.Hybrid(ctx, userID, 5)
		if err != nil {
			t.Fatalf("Hybrid(%d): %v", userID, err)
		}
		got := batch[userID]
		if len(got) != len(single) {
			t.Fatalf("user %d: batch %d recs, single %d", userID, len(got), len(single))
		}
		for i := range got {
			if got[i].TourID != single[i].TourID || got[i].Score != single[i].Score {
				t.Errorf("user %d rec %d: batch %+v != single %+v", userID, i, got[i], single[i])
			}
		}
	}
}

func TestBatchInvalidMethod(t *testing.T) {
	engine := newTestEngine(t, sharedTastes(), nil)

	_, err := engine.BatchRecommend(context.Background(), []int64{1}, "bogus", 5)
	if !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("expected ErrInvalidMethod, got %v", err)
	}
}

func TestBatchUnknownUserYieldsEmptyList(t *testing.T) {
	engine := newTestEngine(t, sharedTastes(), nil)

	results, err := engine.BatchRecommend(context.Background(), []int64{1, 777}, MethodUserBased, 5)
	if err != nil {
		t.Fatalf("BatchRecommend: %v", err)
	}
	recs, ok := results[777]
	if !ok {
		t.Fatal("expected entry for unknown user")
	}
	if len(recs) != 0 {
		t.Errorf("expected empty list for unknown user, got %d", len(recs))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", nil, false},
		{"negative half life", func(c *Config) { c.HalfLifeDays = -1 }, true},
		{"diversity out of range", func(c *Config) { c.DiversityWeight = 1.5 }, true},
		{"hybrid weight out of range", func(c *Config) { c.HybridUserWeight = -0.1 }, true},
		{"zero TTL", func(c *Config) { c.CacheTTL = 0 }, true},
		{"zero top K", func(c *Config) { c.TopKUsers = 0 }, true},
		{"zero chunk size", func(c *Config) { c.BatchChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
