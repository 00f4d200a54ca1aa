// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Campus Genie
// TUI: chat messages, server-side history records, and notifications.
package model

import (
	"strings"
	"time"
)

// =============================================================================
// CHAT RECORD TYPE
// =============================================================================

// ChatRecord is one persisted query/response pair as the backend stores it.
// Records are immutable from the client's perspective; the only write the
// client ever performs is a delete-all for a user.
type ChatRecord struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId,omitempty"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Preview returns a truncated single-line preview of the record's query.
func (r *ChatRecord) Preview(maxLen int) string {
	q := strings.ReplaceAll(r.Query, "\n", " ")
	runes := []rune(q)
	if len(runes) <= maxLen {
		return q
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// RecordsToMessages expands server history records into the message pairs the
// session log displays. Each record becomes one user message followed by one
// bot message, oldest record first. Server-assigned IDs are kept for the bot
// half so later rating calls can reference them; the user half gets a derived
// ID since the backend does not store one.
func RecordsToMessages(records []ChatRecord) []*Message {
	msgs := make([]*Message, 0, len(records)*2)
	for _, rec := range records {
		userID := rec.ID + "_q"
		if rec.ID == "" {
			userID = GenerateID()
		}
		msgs = append(msgs, &Message{
			ID:        userID,
			Text:      rec.Query,
			Sender:    SenderUser,
			Timestamp: rec.Timestamp,
		})
		botID := rec.ID
		if botID == "" {
			botID = GenerateID()
		}
		msgs = append(msgs, &Message{
			ID:        botID,
			Text:      rec.Response,
			Sender:    SenderBot,
			Timestamp: rec.Timestamp,
		})
	}
	return msgs
}
