// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package recommend implements the collaborative filtering engine.
//
// The engine builds a dense user x tour interaction matrix from the
// store, preprocesses it (outlier capping, sparsity handling, mean
// centering), derives cosine similarity matrices lazily, and serves
// three prediction strategies: user-based, tour-based, and hybrid.
// Candidates are optionally diversified with Maximal Marginal
// Relevance and annotated with human-readable explanations.
//
// All matrices are memoized per engine instance with TTL and
// content-hash invalidation; completed matrices are immutable
// snapshots read without locking, and only the build/invalidate path
// takes the engine mutex.
package recommend
