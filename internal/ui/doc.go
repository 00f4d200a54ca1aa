// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
//
// The Model composes the session log, the history panel, and the
// notification store behind a single Update loop. All state mutation happens
// through typed messages: network commands run in goroutines managed by
// Bubble Tea and report back as session, history, or notify messages.
//
// Layout: header, scrolling transcript (viewport), input line, status bar.
// The history panel replaces the transcript while open. Toasts overlay the
// bottom-right corner and never block input.
package ui
