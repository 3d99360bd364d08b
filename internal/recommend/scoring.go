// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import "strings"

// ratingScores maps an integer 1-5 rating to a signed preference score.
// Ratings outside the table contribute nothing.
var ratingScores = map[int]int{
	5: 4,
	4: 3,
	3: 1,
	2: -1,
	1: -3,
}

// behaviorScores maps an interaction type to its implicit preference
// score. Unknown types fall back to the weight of a view.
var behaviorScores = map[string]int{
	"view":     1,
	"click":    1,
	"favorite": 2,
	"review":   3,
	"book":     5,
	"booking":  5,
	"paid":     6,
}

const defaultBehaviorScore = 1

// InteractionScore maps an interaction event to its signed integer
// score. When a rating is supplied the score is derived solely from
// the rating bucket; otherwise the behavior table applies. The
// function is pure and total.
func InteractionScore(interactionType string, rating *float64) int {
	if rating != nil {
		return ratingScores[int(*rating)]
	}
	if score, ok := behaviorScores[strings.ToLower(interactionType)]; ok {
		return score
	}
	return defaultBehaviorScore
}
