// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"math"
	"sort"
)

// preprocess applies the enabled pipeline stages to matrix in fixed
// order (outlier capping, sparsity zeroing, mean centering) and stores
// the result plus normalization statistics on state. The input matrix
// is consumed; state.raw must already hold its pristine copy.
func (e *Engine) preprocess(state *modelState, matrix [][]float64) {
	if len(matrix) == 0 {
		state.processed = matrix
		return
	}

	if e.cfg.RemoveOutliers {
		matrix = e.capOutliers(matrix)
	}
	if e.cfg.HandleSparse {
		matrix = e.zeroSparse(matrix)
	}
	if e.cfg.Normalize {
		matrix = e.normalize(state, matrix)
		state.normalized = true
	}

	state.processed = matrix
}

// capOutliers caps cells above Q3 + 1.5*IQR of the strictly-positive
// cell distribution. Only the upper tail is capped; scores already
// have a meaningful lower bound near zero. Emits a non-fatal warning
// when capping occurs.
func (e *Engine) capOutliers(matrix [][]float64) [][]float64 {
	var positive []float64
	for _, row := range matrix {
		for _, v := range row {
			if v > 0 {
				positive = append(positive, v)
			}
		}
	}
	if len(positive) == 0 {
		return matrix
	}

	sort.Float64s(positive)
	q1 := percentile(positive, 25)
	q3 := percentile(positive, 75)
	iqr := q3 - q1
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	outliers := 0
	for i, row := range matrix {
		for j, v := range row {
			if v > upperBound {
				matrix[i][j] = upperBound
				outliers++
			} else if v < lowerBound {
				// Left in place; counted for the diagnostic only.
				outliers++
			}
		}
	}

	if outliers > 0 {
		e.logger.Warn().
			Int("outliers", outliers).
			Float64("lower_bound", lowerBound).
			Float64("upper_bound", upperBound).
			Msg("capped interaction score outliers")
	}

	return matrix
}

// zeroSparse zeroes any user row or tour column with fewer than two
// nonzero cells. Rows and columns are never removed so the matrix
// shape and index maps stay valid for cold-start logic. Also warns
// when the overall sparsity ratio exceeds the configured threshold.
func (e *Engine) zeroSparse(matrix [][]float64) [][]float64 {
	rows := len(matrix)
	cols := len(matrix[0])

	nonZero := 0
	rowCounts := make([]int, rows)
	colCounts := make([]int, cols)
	for i, row := range matrix {
		for j, v := range row {
			if v != 0 {
				nonZero++
				rowCounts[i]++
				colCounts[j]++
			}
		}
	}

	sparsity := 1 - float64(nonZero)/float64(rows*cols)
	if sparsity > e.cfg.SparsityWarnThreshold {
		e.logger.Warn().
			Float64("sparsity", sparsity).
			Msg("interaction matrix is very sparse, recommendation quality may suffer")
	}

	for i, count := range rowCounts {
		if count < 2 {
			for j := range matrix[i] {
				matrix[i][j] = 0
			}
		}
	}
	for j, count := range colCounts {
		if count < 2 {
			for i := range matrix {
				matrix[i][j] = 0
			}
		}
	}

	return matrix
}

// normalize mean-centers each user row over its strictly-positive
// cells. Zero cells stay zero: "no signal" never becomes a negative
// preference. Per-user means and the global positive-cell mean are
// retained on state for denormalization.
func (e *Engine) normalize(state *modelState, matrix [][]float64) [][]float64 {
	rows := len(matrix)
	userMeans := make([]float64, rows)

	for i, row := range matrix {
		sum := 0.0
		count := 0
		for _, v := range row {
			if v > 0 {
				sum += v
				count++
			}
		}
		if count > 0 {
			userMeans[i] = sum / float64(count)
		}
	}

	globalSum := 0.0
	globalCount := 0
	for _, row := range matrix {
		for _, v := range row {
			if v > 0 {
				globalSum += v
				globalCount++
			}
		}
	}

	for i, row := range matrix {
		if userMeans[i] <= 0 {
			continue
		}
		for j, v := range row {
			if v > 0 {
				matrix[i][j] = v - userMeans[i]
			}
		}
	}

	state.userMeans = userMeans
	if globalCount > 0 {
		state.globalMean = globalSum / float64(globalCount)
	}

	return matrix
}

// denormalize adds back the per-user mean to a predicted score. When
// normalization was disabled for the build, or the user is unknown,
// the score is returned unchanged.
func (s *modelState) denormalize(score float64, userID int64) float64 {
	if !s.normalized || s.userMeans == nil {
		return score
	}
	idx, ok := s.userIndex[userID]
	if !ok {
		return score
	}
	return score + s.userMeans[idx]
}

// percentile computes the p-th percentile of sorted values using
// linear interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
