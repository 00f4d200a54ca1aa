// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Campus Genie
// TUI: chat messages, server-side history records, and notifications.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "Genie"
	default:
		return string(s)
	}
}

// =============================================================================
// RATING TYPE
// =============================================================================

// Rating is an optional thumbs up/down attached to a bot message.
// The zero value means unrated.
type Rating string

const (
	RatingNone Rating = ""
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// Valid reports whether the rating is one of the accepted values.
func (r Rating) Valid() bool {
	return r == RatingUp || r == RatingDown
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in the active conversation.
//
// Only the Rating field is mutable after creation, and only via the session
// log once the backend has acknowledged the rating call.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Rating    Rating    `json:"rating,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        GenerateID(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) *Message {
	return NewMessage(SenderUser, text)
}

// NewBotMessage creates a new bot message.
func NewBotMessage(text string) *Message {
	return NewMessage(SenderBot, text)
}

// NewErrorMessage creates a bot message that stands in for a failed request.
func NewErrorMessage(text string) *Message {
	msg := NewMessage(SenderBot, text)
	msg.IsError = true
	return msg
}

// Preview returns a truncated single-line preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Text) == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GenerateID creates a unique, time-ordered message ID. The nanosecond
// timestamp keeps IDs sortable by creation time; the random suffix keeps
// them unique when two messages land in the same nanosecond.
func GenerateID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "msg_" + strconv.FormatInt(time.Now().UnixNano(), 36) + "_" + hex.EncodeToString(bytes)
}
