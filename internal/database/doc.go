// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

// Package database provides the embedded DuckDB store for users, tours,
// and interactions.
//
// The store serves two consumers: the HTTP API's interaction CRUD, and
// the recommendation engine, which consumes it through the
// recommend.DataProvider interface. All queries are instrumented with
// per-operation duration and error metrics.
//
// DuckDB runs in-process; a single *DB is shared by all goroutines and
// the underlying database/sql pool handles connection concurrency.
package database
