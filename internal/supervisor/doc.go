// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package supervisor builds the suture supervision tree that keeps the
// HTTP server, the event bus consumer, and the matrix refresher
// running with restart-on-failure semantics. Service wrappers live in
// the services subpackage.
package supervisor
