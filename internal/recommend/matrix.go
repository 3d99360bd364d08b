// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// decayFloor is the minimum time-decay factor: an interaction never
// drops below 10% of its original weight.
const decayFloor = 0.1

// modelState is one immutable snapshot of the engine's matrices.
// A snapshot is fully constructed before being published and is never
// mutated afterwards; lazy similarity computation publishes a new
// snapshot via copy-on-write.
type modelState struct {
	built    bool
	builtAt  time.Time
	dataHash string

	// raw is the decay-applied, max-aggregated matrix before
	// preprocessing; processed is the same matrix after outlier
	// capping, sparsity zeroing, and normalization. Both share the
	// index maps.
	raw       [][]float64
	processed [][]float64

	userIDs   []int64
	tourIDs   []int64
	userIndex map[int64]int
	tourIndex map[int64]int
	tours     map[int64]Tour

	// normalized records whether mean-centering ran for this build;
	// denormalization is a no-op otherwise.
	normalized bool
	userMeans  []float64
	globalMean float64

	// history holds per-pair interaction records for explanations.
	history map[interactionKey][]interactionRecord

	// Similarity matrices, nil until lazily computed.
	userSim [][]float64
	tourSim [][]float64
}

// empty reports whether this snapshot has no usable matrix.
func (s *modelState) empty() bool {
	return !s.built || len(s.processed) == 0
}

// signatureHash fingerprints the interaction data set for cache
// validation.
func signatureHash(sig DataSignature) string {
	latest := ""
	if !sig.LatestCreatedAt.IsZero() {
		latest = sig.LatestCreatedAt.UTC().Format(time.RFC3339Nano)
	}
	payload := fmt.Sprintf("%d_%d_%d_%s", sig.InteractionCount, sig.TourCount, sig.UserCount, latest)
	sum := md5.Sum([]byte(payload)) //nolint:gosec // content fingerprint, not a security boundary
	return hex.EncodeToString(sum[:])
}

// timeDecay returns the exponential decay factor for an interaction
// created at the given time: exp(-days/halfLife), floored at
// decayFloor. The day count keeps its fractional component. A zero
// timestamp decays to 1.0 rather than failing the build.
func timeDecay(createdAt, now time.Time, halfLifeDays float64) float64 {
	if createdAt.IsZero() {
		return 1.0
	}
	days := now.Sub(createdAt).Seconds() / 86400.0
	decay := math.Exp(-days / halfLifeDays)
	return math.Max(decay, decayFloor)
}

// buildState loads all interactions, users, and eligible tours and
// constructs a fresh snapshot. An empty user or tour set yields an
// unbuilt snapshot rather than an error.
func (e *Engine) buildState(ctx context.Context) (*modelState, error) {
	start := time.Now()

	dataHash := ""
	if e.cfg.EnableCaching {
		if sig, err := e.provider.DataSignature(ctx); err == nil {
			dataHash = signatureHash(sig)
		} else {
			e.logger.Warn().Err(err).Msg("data signature unavailable, hash validation disabled for this build")
		}
	}

	interactions, err := e.provider.Interactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	userIDs, err := e.provider.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	tours, err := e.provider.EligibleTours(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tours: %w", err)
	}

	if len(userIDs) == 0 || len(tours) == 0 {
		e.logger.Warn().
			Int("users", len(userIDs)).
			Int("tours", len(tours)).
			Msg("no users or eligible tours, matrix is empty")
		return &modelState{dataHash: dataHash}, nil
	}

	tourIDs := make([]int64, len(tours))
	tourByID := make(map[int64]Tour, len(tours))
	for i, t := range tours {
		tourIDs[i] = t.ID
		tourByID[t.ID] = t
	}

	userIndex := make(map[int64]int, len(userIDs))
	for i, id := range userIDs {
		userIndex[id] = i
	}
	tourIndex := make(map[int64]int, len(tourIDs))
	for i, id := range tourIDs {
		tourIndex[id] = i
	}

	matrix := newMatrix(len(userIDs), len(tourIDs))
	history := make(map[interactionKey][]interactionRecord)
	now := time.Now().UTC()

	for _, in := range interactions {
		userIdx, okUser := userIndex[in.UserID]
		tourIdx, okTour := tourIndex[in.TourID]
		if !okUser || !okTour {
			continue
		}

		score := in.Score
		if e.cfg.UseTimeDecay && !in.CreatedAt.IsZero() {
			score *= timeDecay(in.CreatedAt, now, e.cfg.HalfLifeDays)
		}

		// Keep the strongest signal per pair rather than the latest.
		if cell := matrix[userIdx][tourIdx]; cell > 0 {
			matrix[userIdx][tourIdx] = math.Max(cell, score)
		} else {
			matrix[userIdx][tourIdx] = score
		}

		key := interactionKey{userID: in.UserID, tourID: in.TourID}
		history[key] = append(history[key], interactionRecord{
			Type:      in.Type,
			Score:     in.Score,
			CreatedAt: in.CreatedAt,
		})
	}

	state := &modelState{
		built:     true,
		builtAt:   now,
		dataHash:  dataHash,
		raw:       copyMatrix(matrix),
		userIDs:   userIDs,
		tourIDs:   tourIDs,
		userIndex: userIndex,
		tourIndex: tourIndex,
		tours:     tourByID,
		history:   history,
	}

	e.preprocess(state, matrix)

	e.logger.Info().
		Int("users", len(userIDs)).
		Int("tours", len(tourIDs)).
		Int("interactions", len(interactions)).
		Dur("elapsed", time.Since(start)).
		Msg("interaction matrix built")

	return state, nil
}

// newMatrix allocates a zeroed rows x cols matrix.
func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// copyMatrix returns a deep copy of m.
func copyMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
