// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package models defines the domain rows persisted in DuckDB and the
// JSON response envelopes returned by the HTTP API.
//
// Response envelopes are shared by all recommendation endpoints so that
// clients can branch on the success flag and the method tag without
// inspecting per-endpoint shapes.
package models
