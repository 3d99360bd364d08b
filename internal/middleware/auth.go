// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/wayfarelabs/wayfare/internal/logging"
	"github.com/wayfarelabs/wayfare/internal/models"
)

// internalKeyHeader carries the shared secret for service-to-service
// calls. The API is internal-only; there is no end-user auth.
const internalKeyHeader = "X-Internal-Key"

// InternalAuth requires the shared secret on every request. A server
// running without a configured secret refuses all requests rather than
// failing open.
func InternalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				logging.Ctx(r.Context()).Error().
					Msg("internal shared secret not configured, refusing request")
				writeAuthError(w, http.StatusInternalServerError,
					"INTERNAL_ERROR", "service authentication is not configured")
				return
			}

			key := r.Header.Get(internalKeyHeader)
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				logging.Ctx(r.Context()).Warn().
					Str("path", r.URL.Path).
					Msg("rejected request with invalid internal key")
				writeAuthError(w, http.StatusUnauthorized,
					"AUTHENTICATION_ERROR", "invalid or missing internal key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.ErrorResponse{
		Success: false,
		Error:   models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("encode auth error response")
	}
}
