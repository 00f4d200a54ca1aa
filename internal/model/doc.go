// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Campus Genie
// TUI: chat messages, server-side history records, and notifications.
//
// Messages are owned by the session log for the lifetime of the process and
// are never an authoritative copy of server state. History records are
// immutable transcript entries owned by the backend; the client only reads
// and bulk-deletes them.
package model
