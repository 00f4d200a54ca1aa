// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genie provides the HTTP client for the Campus Genie backend.
package genie

import (
	"encoding/json"
	"strings"

	"github.com/jeranaias/genie-tui/internal/model"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Query  string `json:"query"`
	UserID string `json:"userId,omitempty"`
}

// RateRequest is the body of POST /api/rate.
type RateRequest struct {
	MessageID string `json:"messageId"`
	Rating    string `json:"rating"`
	UserID    string `json:"userId,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the decoded reply of POST /api/chat. The backend returns
// either a plain string or a list of bullet points; either way Text carries
// the display form (list items joined with newlines).
type ChatResponse struct {
	Text string
}

// chatResponseWire matches the raw JSON shape.
type chatResponseWire struct {
	Response json.RawMessage `json:"response"`
}

// serverError matches the error body the backend attaches to non-2xx
// responses: {"error": "..."}.
type serverError struct {
	Error string `json:"error"`
}

// decodeChatResponse turns the wire payload into display text.
// A missing or null response field falls back to a fixed string rather than
// failing, matching the tolerant-payload policy.
func decodeChatResponse(data []byte) ChatResponse {
	const noResponse = "No response available."

	var wire chatResponseWire
	if err := json.Unmarshal(data, &wire); err != nil || len(wire.Response) == 0 {
		return ChatResponse{Text: noResponse}
	}

	var s string
	if err := json.Unmarshal(wire.Response, &s); err == nil {
		if s == "" {
			return ChatResponse{Text: noResponse}
		}
		return ChatResponse{Text: s}
	}

	var items []string
	if err := json.Unmarshal(wire.Response, &items); err == nil {
		if len(items) == 0 {
			return ChatResponse{Text: noResponse}
		}
		return ChatResponse{Text: strings.Join(items, "\n")}
	}

	return ChatResponse{Text: noResponse}
}

// =============================================================================
// HISTORY DECODING
// =============================================================================

// historyEnvelope covers the two object-shaped history payloads.
type historyEnvelope struct {
	History  []model.ChatRecord `json:"history"`
	Messages []model.ChatRecord `json:"messages"`
}

// decodeHistory accepts the three observed history payload shapes and
// normalizes anything unrecognized to an empty record set.
func decodeHistory(data []byte) []model.ChatRecord {
	var records []model.ChatRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records
	}

	var env historyEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.History != nil {
			return env.History
		}
		if env.Messages != nil {
			return env.Messages
		}
	}

	return []model.ChatRecord{}
}
