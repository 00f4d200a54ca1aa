// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local, searchable copy of completed exchanges.
//
// The archive is independent of the backend's server-side history: it lives
// in a SQLite database under the user's data directory and survives server
// clears. Every successful send is recorded here by the session log, and a
// full-text index over query and response text makes old answers findable
// without a round trip.
//
// The database uses modernc.org/sqlite (pure Go, no cgo) with an FTS5
// virtual table kept in sync by triggers.
package archive
