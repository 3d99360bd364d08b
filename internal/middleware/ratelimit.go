// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/wayfarelabs/wayfare/internal/logging"
)

// BatchLimiter throttles the batch recommendation endpoint with a
// single global token bucket. Batch requests fan out to per-user
// predictions, so one caller can saturate the engine; the per-IP
// limiter on the rest of the API does not capture that cost.
type BatchLimiter struct {
	limiter *rate.Limiter
}

// NewBatchLimiter allows rps requests per second with a burst of one.
// A non-positive rps disables the limiter.
func NewBatchLimiter(rps float64) *BatchLimiter {
	if rps <= 0 {
		return &BatchLimiter{}
	}
	return &BatchLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Middleware rejects requests with 429 once the bucket is empty.
func (l *BatchLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.limiter != nil && !l.limiter.Allow() {
			logging.Ctx(r.Context()).Warn().
				Str("path", r.URL.Path).
				Msg("batch rate limit exceeded")
			writeAuthError(w, http.StatusTooManyRequests,
				"RATE_LIMIT_EXCEEDED", "batch request rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
