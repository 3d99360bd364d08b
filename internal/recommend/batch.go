// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package recommend

import (
	"context"
	"fmt"
)

// BatchRecommend computes recommendations for several users with one
// matrix and similarity build. Users are processed sequentially in
// fixed-size chunks; chunking bounds transient allocations and never
// changes results. A failure for one user is logged and yields an
// empty list for that user, not a batch abort.
func (e *Engine) BatchRecommend(ctx context.Context, userIDs []int64, method string, limit int) (map[int64][]Recommendation, error) {
	switch method {
	case MethodUserBased, MethodTourBased, MethodHybrid:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}

	if _, err := e.ensureMatrix(ctx, false); err != nil {
		return nil, err
	}
	if method == MethodUserBased || method == MethodHybrid {
		if _, err := e.ensureUserSimilarity(ctx); err != nil {
			return nil, err
		}
	}
	if method == MethodTourBased || method == MethodHybrid {
		if _, err := e.ensureTourSimilarity(ctx); err != nil {
			return nil, err
		}
	}

	results := make(map[int64][]Recommendation, len(userIDs))

	for start := 0; start < len(userIDs); start += e.cfg.BatchChunkSize {
		end := start + e.cfg.BatchChunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		for _, userID := range userIDs[start:end] {
			recs, err := e.Recommend(ctx, userID, method, limit)
			if err != nil {
				e.logger.Warn().
					Err(err).
					Int64("user_id", userID).
					Str("method", method).
					Msg("batch recommendation failed for user")
				results[userID] = []Recommendation{}
				continue
			}
			results[userID] = recs
		}
	}

	return results, nil
}
