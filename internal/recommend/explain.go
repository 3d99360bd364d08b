// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"fmt"
	"sort"
	"strings"
)

const (
	explanationSeparator = " | "
	defaultExplanation   = "Recommended based on your preferences and similar users"
)

// addExplanations attaches a human-readable reason to each
// recommendation, fusing up to three sources: the most similar users,
// the most similar tours the user already interacted with, and the
// user's own interaction history with the recommended tour.
func (e *Engine) addExplanations(s *modelState, recs []Recommendation, userID int64) {
	userIdx, ok := s.userIndex[userID]
	if !ok {
		return
	}

	userRow := s.processed[userIdx]
	interactedIDs := make([]int64, 0)
	for i, v := range userRow {
		if v > 0 {
			interactedIDs = append(interactedIDs, s.tourIDs[i])
		}
	}

	var similarUsersPart string
	if s.userSim != nil {
		if similar := topSimilarUsers(s, userIdx, 3); len(similar) > 0 {
			names := make([]string, len(similar))
			for i, uid := range similar {
				names[i] = fmt.Sprintf("User %d", uid)
			}
			shown := names
			if len(shown) > 2 {
				shown = shown[:2]
			}
			similarUsersPart = fmt.Sprintf(
				"Recommended because %d similar users (%s) liked this tour",
				len(names), strings.Join(shown, ", "))
		}
	}

	for i := range recs {
		var parts []string

		if similarUsersPart != "" {
			parts = append(parts, similarUsersPart)
		}

		if s.tourSim != nil && len(interactedIDs) > 0 {
			if titles := similarInteractedTitles(s, recs[i].TourID, interactedIDs, 2); len(titles) > 0 {
				parts = append(parts, "Similar to tours you have viewed: "+strings.Join(titles, ", "))
			}
		}

		if records := s.history[interactionKey{userID: userID, tourID: recs[i].TourID}]; len(records) > 0 {
			types := uniqueTypes(records)
			if len(types) > 0 {
				shown := types
				if len(shown) > 2 {
					shown = shown[:2]
				}
				parts = append(parts, fmt.Sprintf(
					"You have %d interactions with this tour (%s)",
					len(records), strings.Join(shown, ", ")))
			}
		}

		if len(parts) == 0 {
			parts = append(parts, defaultExplanation)
		}

		recs[i].Explanation = strings.Join(parts, explanationSeparator)
	}
}

// topSimilarUsers returns up to n user ids with positive similarity to
// the user at userIdx, most similar first, excluding the user itself.
func topSimilarUsers(s *modelState, userIdx, n int) []int64 {
	indices := topSimilarIndices(s.userSim[userIdx], userIdx, n)

	out := make([]int64, 0, len(indices))
	for _, idx := range indices {
		if s.userSim[userIdx][idx] > 0 {
			out = append(out, s.userIDs[idx])
		}
	}
	return out
}

// similarInteractedTitles returns display titles of up to n interacted
// tours with positive similarity to tourID, most similar first. Titles
// longer than 30 characters are truncated with an ellipsis.
func similarInteractedTitles(s *modelState, tourID int64, interactedIDs []int64, n int) []string {
	tourIdx, ok := s.tourIndex[tourID]
	if !ok {
		return nil
	}

	type scored struct {
		title string
		sim   float64
	}
	var matches []scored

	for _, id := range interactedIDs {
		idx, ok := s.tourIndex[id]
		if !ok {
			continue
		}
		sim := s.tourSim[tourIdx][idx]
		if sim <= 0 {
			continue
		}
		tour, ok := s.tours[id]
		if !ok {
			continue
		}
		matches = append(matches, scored{title: truncateTitle(tour.Title, 30), sim: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].sim > matches[j].sim })
	if len(matches) > n {
		matches = matches[:n]
	}

	titles := make([]string, len(matches))
	for i, m := range matches {
		titles[i] = m.title
	}
	return titles
}

// uniqueTypes returns the distinct non-empty interaction types in
// first-seen order.
func uniqueTypes(records []interactionRecord) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, r := range records {
		if r.Type == "" {
			continue
		}
		if _, ok := seen[r.Type]; ok {
			continue
		}
		seen[r.Type] = struct{}{}
		out = append(out, r.Type)
	}
	return out
}

// truncateTitle shortens a title to max runes, appending an ellipsis
// when truncation occurs.
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + "..."
}
