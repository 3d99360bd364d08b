// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

/*
Package middleware provides HTTP middleware for the API server.

It covers request ID propagation for tracing, Prometheus request
instrumentation, shared-secret authentication for internal callers,
and the global batch rate limiter. Cross-cutting concerns with a
hardened ecosystem implementation (CORS, per-IP rate limiting,
compression, panic recovery) are wired directly from the Chi ecosystem
in the router instead of being reimplemented here.
*/
package middleware
