// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package events provides the optional NATS JetStream event bus.
//
// When enabled, interaction writes publish an InteractionEvent and a
// durable consumer invalidates the recommendation engine's cached
// matrices, so other instances pick up new data without waiting for
// the cache TTL. The bus can connect to an external NATS server or run
// an embedded one for single-binary deployments.
//
// The whole package is inert unless events.enabled is set: the API
// serves recommendations without it, falling back to TTL plus
// content-hash cache validation.
package events
