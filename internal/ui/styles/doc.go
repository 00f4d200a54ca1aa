// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the genie TUI.
//
// The palette is defined once as Lip Gloss AdaptiveColors, so every style
// renders correctly on both light and dark terminals. Theme bundles the
// configured styles and detects the terminal's color capability through
// termenv at startup.
//
// Status indicators are ASCII shapes ([OK], [X], [!], [i]) alongside color,
// so state remains readable for colorblind users and dumb terminals.
package styles
