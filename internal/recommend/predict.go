// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"sort"

	"github.com/wayfarelabs/wayfare/internal/metrics"
)

// UserBased recommends tours the most similar users scored highly.
// Only tours the user has no processed signal for are ever proposed.
func (e *Engine) UserBased(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	s, err := e.ensureUserSimilarity(ctx)
	if err != nil {
		return nil, err
	}
	if e.cfg.UseDiversity {
		if s, err = e.ensureTourSimilarity(ctx); err != nil {
			return nil, err
		}
	}
	if s.empty() {
		return []Recommendation{}, nil
	}

	userIdx, ok := s.userIndex[userID]
	if !ok {
		return []Recommendation{}, nil
	}

	predicted := e.predictUserBased(s, userIdx)
	recs := e.finishPrediction(s, predicted, userID, limit, methodUserBasedCF)
	metrics.RecommendationsServed.WithLabelValues(MethodUserBased).Add(float64(len(recs)))
	return recs, nil
}

// predictUserBased scores every unseen tour for the user at userIdx
// using the similarity-weighted average of the top-K most similar
// users, with a per-tour co-occurrence fallback when the similarity
// mass is zero.
func (e *Engine) predictUserBased(s *modelState, userIdx int) []float64 {
	userRow := s.processed[userIdx]
	neighbors := topSimilarIndices(s.userSim[userIdx], userIdx, e.cfg.TopKUsers)
	predicted := make([]float64, len(s.tourIDs))

	for tourIdx := range s.tourIDs {
		if userRow[tourIdx] != 0 {
			continue
		}

		simSum := 0.0
		weighted := 0.0
		for _, n := range neighbors {
			sim := s.userSim[userIdx][n]
			simSum += sim
			weighted += sim * s.processed[n][tourIdx]
		}

		if simSum > 0 {
			predicted[tourIdx] = weighted / simSum
			continue
		}

		// Co-occurrence fallback over the raw matrix: disjoint or
		// fully sparse similarity must not silently suppress every
		// candidate.
		rawRow := s.raw[userIdx]
		interacted := positiveIndices(rawRow)
		if len(interacted) == 0 {
			continue
		}
		score := coOccurrenceScore(s.raw, userIdx, tourIdx, interacted)
		if score > 0 {
			predicted[tourIdx] = score / float64(len(interacted))
		}
	}

	return predicted
}

// TourBased recommends tours similar to those the user already
// interacted with.
func (e *Engine) TourBased(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	s, err := e.ensureTourSimilarity(ctx)
	if err != nil {
		return nil, err
	}
	if s.empty() {
		return []Recommendation{}, nil
	}

	userIdx, ok := s.userIndex[userID]
	if !ok {
		return []Recommendation{}, nil
	}

	predicted := e.predictTourBased(s, userIdx)
	recs := e.finishPrediction(s, predicted, userID, limit, methodTourBasedCF)
	metrics.RecommendationsServed.WithLabelValues(MethodTourBased).Add(float64(len(recs)))
	return recs, nil
}

// predictTourBased scores every unseen tour as the similarity-weighted
// average of the user's own ratings on similar tours, falling back to
// co-occurrence when the similarity mass is zero. The fallback scans
// the raw matrix but keeps the processed interaction count as its
// denominator.
func (e *Engine) predictTourBased(s *modelState, userIdx int) []float64 {
	userRow := s.processed[userIdx]
	interacted := positiveIndices(userRow)
	predicted := make([]float64, len(s.tourIDs))

	for tourIdx := range s.tourIDs {
		if userRow[tourIdx] != 0 {
			continue
		}
		if len(interacted) == 0 {
			continue
		}

		simSum := 0.0
		weighted := 0.0
		for _, it := range interacted {
			sim := s.tourSim[tourIdx][it]
			simSum += sim
			weighted += sim * userRow[it]
		}

		if simSum > 0 {
			predicted[tourIdx] = weighted / simSum
			continue
		}

		rawInteracted := positiveIndices(s.raw[userIdx])
		score := coOccurrenceScore(s.raw, userIdx, tourIdx, rawInteracted)
		if score > 0 {
			predicted[tourIdx] = score / float64(len(interacted))
		}
	}

	return predicted
}

// Hybrid combines user-based and tour-based predictions, each run at
// twice the requested count, weighting the user side by
// HybridUserWeight. A tour missing from one side contributes zero for
// that side.
func (e *Engine) Hybrid(ctx context.Context, userID int64, limit int) ([]Recommendation, error) {
	userRecs, err := e.UserBased(ctx, userID, limit*2)
	if err != nil {
		return nil, err
	}
	tourRecs, err := e.TourBased(ctx, userID, limit*2)
	if err != nil {
		return nil, err
	}

	type combined struct {
		rec       Recommendation
		userScore float64
		tourScore float64
	}

	order := make([]int64, 0, len(userRecs)+len(tourRecs))
	byID := make(map[int64]*combined, len(userRecs)+len(tourRecs))

	for _, rec := range userRecs {
		order = append(order, rec.TourID)
		byID[rec.TourID] = &combined{rec: rec, userScore: rec.Score}
	}
	for _, rec := range tourRecs {
		if c, ok := byID[rec.TourID]; ok {
			c.tourScore = rec.Score
			continue
		}
		order = append(order, rec.TourID)
		byID[rec.TourID] = &combined{rec: rec, tourScore: rec.Score}
	}

	w := e.cfg.HybridUserWeight
	recs := make([]Recommendation, 0, len(order))
	for _, id := range order {
		c := byID[id]
		recs = append(recs, Recommendation{
			TourID: c.rec.TourID,
			Title:  c.rec.Title,
			Slug:   c.rec.Slug,
			Score:  w*c.userScore + (1-w)*c.tourScore,
			Method: methodHybridCF,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })

	s := e.state.Load()
	if e.cfg.UseDiversity && len(recs) > 1 {
		recs = diversityRerank(recs, s, limit, e.cfg.DiversityWeight)
	}
	if e.cfg.EnableExplanations {
		e.addExplanations(s, recs, userID)
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}

	metrics.RecommendationsServed.WithLabelValues(MethodHybrid).Add(float64(len(recs)))
	return recs, nil
}

// finishPrediction turns a per-tour score vector into the final
// recommendation list: top candidates at twice the limit, positive
// scores only, denormalized, diversified, explained, truncated.
func (e *Engine) finishPrediction(s *modelState, predicted []float64, userID int64, limit int, method string) []Recommendation {
	candidates := topScoreIndices(predicted, limit*2)

	recs := make([]Recommendation, 0, len(candidates))
	for _, tourIdx := range candidates {
		if predicted[tourIdx] <= 0 {
			continue
		}
		tour, ok := s.tours[s.tourIDs[tourIdx]]
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			TourID: tour.ID,
			Title:  tour.Title,
			Slug:   tour.Slug,
			Score:  s.denormalize(predicted[tourIdx], userID),
			Method: method,
		})
	}

	if e.cfg.UseDiversity && len(recs) > 1 {
		recs = diversityRerank(recs, s, limit, e.cfg.DiversityWeight)
	}
	if e.cfg.EnableExplanations {
		e.addExplanations(s, recs, userID)
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// coOccurrenceScore estimates affinity for candidateIdx from raw
// co-rating patterns: for each tour the user interacted with, the mean
// of co-raters' positive scores on the candidate is weighted by the
// number of such co-raters and accumulated.
func coOccurrenceScore(raw [][]float64, userIdx, candidateIdx int, interacted []int) float64 {
	score := 0.0
	for _, it := range interacted {
		posSum := 0.0
		posCount := 0
		total := 0.0
		for u := range raw {
			if u == userIdx || raw[u][it] <= 0 {
				continue
			}
			v := raw[u][candidateIdx]
			total += v
			if v > 0 {
				posSum += v
				posCount++
			}
		}
		if total > 0 && posCount > 0 {
			score += (posSum / float64(posCount)) * float64(posCount)
		}
	}
	return score
}

// positiveIndices returns the indices of strictly positive cells.
func positiveIndices(row []float64) []int {
	var out []int
	for i, v := range row {
		if v > 0 {
			out = append(out, i)
		}
	}
	return out
}

// topSimilarIndices returns up to k indices sorted by descending
// similarity, excluding self.
func topSimilarIndices(sims []float64, self, k int) []int {
	idx := make([]int, 0, len(sims))
	for i := range sims {
		if i != self {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return sims[idx[a]] > sims[idx[b]] })
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}

// topScoreIndices returns up to k indices sorted by descending score.
func topScoreIndices(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}
