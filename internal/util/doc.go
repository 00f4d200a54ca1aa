// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the genie application.
//
// This package contains common helper functions used throughout the
// application for string display handling and file operations.
//
// String utilities are rune- and width-aware (via go-runewidth), so CJK and
// other double-width text truncates cleanly in terminal columns.
//
// AtomicWriteFile writes files crash-safely: temp file in the same
// directory, fsync, then atomic rename.
package util
