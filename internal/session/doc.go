// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session maintains the ordered conversation for the active user and
// mediates outbound chat requests.
//
// The log is a client-local projection, not a source of truth: a history
// fetch replaces it wholesale, and clearing it is an intentional, lossy
// resync point. At most one chat request is in flight at a time; the pending
// flag gates new sends.
//
// Requests are tagged with a generation counter. Clearing the log or
// switching users bumps the generation, and completions carrying a stale
// generation are discarded instead of being appended onto state they no
// longer belong to. The pending flag is still released by a stale send
// completion, mirroring the finally-path of the request lifecycle.
package session
