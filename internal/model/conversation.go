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
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered message list for the active session.
// Ordering is strictly append-order: insertion order equals display order,
// and no deduplication or reordering is ever performed.
type Conversation struct {
	Messages []*Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{Messages: make([]*Message, 0)}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// Replace swaps the entire message list. Used by the history resync, which
// is an intentional, lossy replacement of the local projection.
func (c *Conversation) Replace(msgs []*Message) {
	c.Messages = msgs
	if c.Messages == nil {
		c.Messages = make([]*Message, 0)
	}
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.Messages = make([]*Message, 0)
}

// GetByID returns the message with the given ID, or nil.
func (c *Conversation) GetByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// Last returns the most recent message, or nil if empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Snapshot returns a copy of the message slice. The pointed-to messages are
// shared; callers must treat them as read-only.
func (c *Conversation) Snapshot() []*Message {
	out := make([]*Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the conversation as a Markdown transcript.
func (c *Conversation) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Campus Genie transcript\n\n")
	sb.WriteString("Exported: " + time.Now().Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range c.Messages {
		label := "**" + msg.Sender.DisplayName() + "**"
		if msg.IsError {
			label += " (error)"
		}
		sb.WriteString(label + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
