// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for genie.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.genie/config.toml
//   - ~/.genie/config.json
//   - Built-in defaults
//
// Environment overrides (applied after file load):
//   - GENIE_BACKEND_URL  backend base URL
//   - GENIE_USER_ID      student identifier
//   - GENIE_DATA_DIR     data directory for local state
//
// Configuration is loaded once in main and passed to the components that
// need it. There is no package-level global instance.
package config
