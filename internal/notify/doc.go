// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify decouples transient, cross-cutting status notifications
// from the components that trigger them.
//
// A Store holds two collections: the visible queue (what is currently on
// screen, never persisted, capped at a handful of toasts) and the replay
// history (a copy of every notification ever raised, capped at 50 entries,
// oldest evicted first, persisted as a single JSON file).
//
// The store is an explicitly constructed, injected service with a defined
// lifecycle: built once at application start, Close()d at shutdown. Nothing
// in this package reaches for ambient global state.
//
// When several instances share a data directory, the history file is
// last-write-wins; an fsnotify watcher reloads the history when another
// instance writes it.
package notify
