// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package api

import (
	"net/http"
	"time"

	"github.com/wayfarelabs/wayfare/internal/models"
)

// HealthLive serves GET /api/v1/health/live. The process answering is
// the whole check.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// HealthReady serves GET /api/v1/health/ready. Readiness requires a
// reachable database.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status:    "unavailable",
			Timestamp: time.Now().UTC(),
			Checks:    map[string]string{"database": err.Error()},
		})
		return
	}
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}

// Health serves GET /api/v1/health with per-dependency checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := "ok"
	code := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.events != nil {
		if h.events.Healthy() {
			checks["events"] = "ok"
		} else {
			checks["events"] = "disconnected"
			// The API still serves without the bus; report degraded
			// but stay ready.
			if status == "ok" {
				status = "degraded"
			}
		}
	}

	checks["uptime"] = time.Since(h.startedAt).Truncate(time.Second).String()

	writeJSON(w, code, models.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
