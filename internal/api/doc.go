// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

/*
Package api provides the HTTP surface of the recommendation service.

Routing uses Chi with ecosystem middleware for CORS, per-IP rate
limiting, compression, and panic recovery. All data routes live under
/api/v1 behind the internal shared-secret check; health probes and the
Prometheus endpoint are open so orchestrators and scrapers do not need
the secret.

Endpoints:

	GET    /api/v1/recommendations/{userID}   personalized recommendations
	POST   /api/v1/recommendations/batch      recommendations for many users
	GET    /api/v1/tours/{tourID}/similar     similar tours for a tour page
	GET    /api/v1/cache/stats                engine cache report
	POST   /api/v1/cache/invalidate           drop cached matrices
	POST   /api/v1/interactions               record an interaction
	GET    /api/v1/interactions/user/{userID} a user's interaction history
	GET    /api/v1/interactions/tour/{tourID} a tour's interaction history
	GET    /api/v1/interactions/stats         interaction table summary
	DELETE /api/v1/interactions               scoped deletion (requires confirm)
	GET    /api/v1/health                     full health report
	GET    /api/v1/health/live                liveness probe
	GET    /api/v1/health/ready               readiness probe
	GET    /metrics                           Prometheus metrics
*/
package api
