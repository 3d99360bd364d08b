// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"math"
	"testing"
)

func TestCapOutliersUpperTailOnly(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)

	// Positive values: 1..8 plus an extreme outlier.
	matrix := [][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{1000, 0, 0, 0},
	}
	original := copyMatrix(matrix)

	got := engine.capOutliers(matrix)

	for i, row := range got {
		for j, v := range row {
			if v > original[i][j] {
				t.Errorf("cell [%d][%d] raised from %v to %v", i, j, original[i][j], v)
			}
		}
	}
	if got[2][0] >= 1000 {
		t.Errorf("outlier not capped: %v", got[2][0])
	}
	// Zero cells untouched.
	if got[2][1] != 0 {
		t.Errorf("zero cell modified: %v", got[2][1])
	}
}

func TestCapOutliersEmptyMatrixNoop(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)
	matrix := [][]float64{{0, 0}, {0, 0}}
	got := engine.capOutliers(matrix)
	for _, row := range got {
		for _, v := range row {
			if v != 0 {
				t.Errorf("expected all-zero matrix unchanged, got %v", v)
			}
		}
	}
}

func TestZeroSparseRowsAndColumns(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)

	// User 0 has 2 interactions, user 1 has 1 (too sparse).
	// Tour 0 has 2 raters, tours 1 and 2 have 1 each (too sparse).
	matrix := [][]float64{
		{3, 2, 0},
		{1, 0, 0},
		{0, 0, 4},
	}

	got := engine.zeroSparse(matrix)

	// Row 1 zeroed (single interaction), row 2 zeroed.
	for j := range got[1] {
		if got[1][j] != 0 {
			t.Errorf("sparse user row not zeroed at col %d", j)
		}
	}
	// Columns 1 and 2 zeroed everywhere.
	for i := range got {
		if got[i][1] != 0 || got[i][2] != 0 {
			t.Errorf("sparse tour column not zeroed at row %d", i)
		}
	}
	// Cell [0][0] survives: user 0 and tour 0 both have 2 nonzero
	// cells in the input.
	if got[0][0] != 3 {
		t.Errorf("dense cell should survive, got %v", got[0][0])
	}
	// Shape preserved.
	if len(got) != 3 || len(got[0]) != 3 {
		t.Error("matrix shape must not change")
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)

	state := &modelState{
		userIndex: map[int64]int{1: 0, 2: 1},
	}
	matrix := [][]float64{
		{2, 4, 0},
		{0, 6, 0},
	}
	raw := copyMatrix(matrix)

	got := engine.normalize(state, matrix)
	state.normalized = true

	// User 0 mean = 3: positive cells centered, zero stays zero.
	if got[0][0] != -1 || got[0][1] != 1 || got[0][2] != 0 {
		t.Errorf("unexpected normalized row %v", got[0])
	}

	// Round trip through denormalize restores original positives.
	for j, v := range got[0] {
		if raw[0][j] <= 0 {
			continue
		}
		back := state.denormalize(v, 1)
		if math.Abs(back-raw[0][j]) > 1e-9 {
			t.Errorf("round trip mismatch at col %d: got %v, want %v", j, back, raw[0][j])
		}
	}

	// Global mean over positives: (2+4+6)/3 = 4.
	if math.Abs(state.globalMean-4) > 1e-9 {
		t.Errorf("global mean = %v, want 4", state.globalMean)
	}
}

func TestNormalizeNeverTouchesZeroCells(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)

	state := &modelState{userIndex: map[int64]int{}}
	matrix := [][]float64{
		{5, 0, 3},
		{0, 0, 0},
	}

	got := engine.normalize(state, matrix)

	if got[0][1] != 0 {
		t.Errorf("zero cell became %v", got[0][1])
	}
	for j, v := range got[1] {
		if v != 0 {
			t.Errorf("all-zero row modified at col %d: %v", j, v)
		}
	}
}

func TestDenormalizeUnknownUserUnchanged(t *testing.T) {
	state := &modelState{
		normalized: true,
		userMeans:  []float64{3},
		userIndex:  map[int64]int{1: 0},
	}
	if got := state.denormalize(2.5, 42); got != 2.5 {
		t.Errorf("unknown user score changed: %v", got)
	}
	if got := state.denormalize(2.5, 1); got != 5.5 {
		t.Errorf("known user mean not added: %v", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{75, 3.25},
		{100, 4},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestProcessedZeroWhereRawZero(t *testing.T) {
	provider := sharedTastes()
	engine := newTestEngine(t, provider, nil)

	state, err := engine.ensureMatrix(context.Background(), false)
	if err != nil {
		t.Fatalf("ensureMatrix: %v", err)
	}

	for i, row := range state.raw {
		for j, v := range row {
			if v == 0 && state.processed[i][j] != 0 {
				t.Errorf("preprocessing manufactured signal at [%d][%d]: %v", i, j, state.processed[i][j])
			}
		}
	}
}
