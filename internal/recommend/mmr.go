// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import "math"

// diversityRerank greedily re-ranks candidates with Maximal Marginal
// Relevance (Carbonell & Goldstein, 1998): the top-scored candidate is
// always kept first, then each step picks the remaining candidate
// maximizing lambda*relevance - (1-lambda)*maxSimilarityToSelected,
// with lambda = 1 - diversityWeight. Ties keep the earliest candidate.
func diversityRerank(recs []Recommendation, s *modelState, limit int, diversityWeight float64) []Recommendation {
	if len(recs) <= 1 {
		return recs
	}
	if s == nil || len(s.tourSim) == 0 {
		if len(recs) > limit {
			return recs[:limit]
		}
		return recs
	}

	lambda := 1 - diversityWeight

	selected := make([]Recommendation, 0, limit)
	remaining := make([]Recommendation, len(recs))
	copy(remaining, recs)

	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < limit && len(remaining) > 0 {
		bestIdx := 0
		bestMMR := math.Inf(-1)

		for i, rec := range remaining {
			maxSim := 0.0
			if tourIdx, ok := s.tourIndex[rec.TourID]; ok {
				for _, sel := range selected {
					selIdx, selOK := s.tourIndex[sel.TourID]
					if !selOK {
						continue
					}
					if sim := s.tourSim[tourIdx][selIdx]; sim > maxSim {
						maxSim = sim
					}
				}
			}

			mmr := lambda*rec.Score - diversityWeight*maxSim
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}
