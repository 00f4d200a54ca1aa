// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genie provides the HTTP client for the Campus Genie backend.
//
// The backend exposes four endpoints the client consumes:
//
//	POST   /api/chat                      {query, userId} -> {response}
//	GET    /api/chat/history/{userId}     -> history records
//	DELETE /api/chat/history/{userId}     -> delete-all for the user
//	POST   /api/rate                      {messageId, rating, userId}
//
// Two backend generations shipped with differing history payload shapes
// (a bare array, {history: [...]}, and {messages: [...]}); History decodes
// all three and treats anything else as an empty record set.
//
// Errors are categorized with ClientError so callers can distinguish an
// unreachable backend from a timeout or a malformed payload without string
// matching.
package genie
