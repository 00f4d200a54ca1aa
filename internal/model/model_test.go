// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Campus Genie
// TUI: chat messages, server-side history records, and notifications.
package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("What's my attendance?")

	if msg.Sender != SenderUser {
		t.Errorf("Sender = %v, want user", msg.Sender)
	}
	if msg.Text != "What's my attendance?" {
		t.Errorf("Text = %q", msg.Text)
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID should start with 'msg_', got %q", msg.ID)
	}
	if msg.IsError {
		t.Error("user message should not be flagged as error")
	}
	if msg.Rating != RatingNone {
		t.Error("new message should be unrated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage("Sorry, something broke.")

	if msg.Sender != SenderBot {
		t.Errorf("Sender = %v, want bot", msg.Sender)
	}
	if !msg.IsError {
		t.Error("IsError should be true")
	}
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %q", id)
		}
		seen[id] = true
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := NewUserMessage("Show my timetable for this whole semester please")

	preview := msg.Preview(20)
	if len([]rune(preview)) > 20 {
		t.Errorf("Preview too long: %q", preview)
	}
	if !strings.HasSuffix(preview, "...") {
		t.Errorf("Preview should end with ellipsis, got %q", preview)
	}

	short := NewUserMessage("hi")
	if short.Preview(20) != "hi" {
		t.Errorf("short message should be untouched, got %q", short.Preview(20))
	}
}

func TestMessage_Preview_Unicode(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("日", 30))
	preview := msg.Preview(10)
	if len([]rune(preview)) > 10 {
		t.Errorf("rune-truncated preview too long: %q", preview)
	}
}

// =============================================================================
// SENDER / RATING TESTS
// =============================================================================

func TestSender_DisplayName(t *testing.T) {
	if SenderUser.DisplayName() != "You" {
		t.Errorf("user display name = %q", SenderUser.DisplayName())
	}
	if SenderBot.DisplayName() != "Genie" {
		t.Errorf("bot display name = %q", SenderBot.DisplayName())
	}
}

func TestRating_Valid(t *testing.T) {
	if !RatingUp.Valid() || !RatingDown.Valid() {
		t.Error("up/down should be valid ratings")
	}
	if RatingNone.Valid() {
		t.Error("empty rating should not be valid")
	}
	if Rating("sideways").Valid() {
		t.Error("unknown rating should not be valid")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_AppendOrder(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("one"))
	conv.Append(NewBotMessage("two"))
	conv.Append(NewUserMessage("three"))

	if conv.Len() != 3 {
		t.Fatalf("Len = %d, want 3", conv.Len())
	}
	texts := []string{"one", "two", "three"}
	for i, want := range texts {
		if conv.Messages[i].Text != want {
			t.Errorf("Messages[%d].Text = %q, want %q", i, conv.Messages[i].Text, want)
		}
	}
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("hello"))
	conv.Clear()

	if !conv.IsEmpty() {
		t.Error("conversation should be empty after Clear")
	}
	if conv.Messages == nil {
		t.Error("Messages should be an empty slice, not nil")
	}
}

func TestConversation_GetByID(t *testing.T) {
	conv := NewConversation()
	msg := NewBotMessage("answer")
	conv.Append(NewUserMessage("question"))
	conv.Append(msg)

	found := conv.GetByID(msg.ID)
	if found == nil || found.Text != "answer" {
		t.Errorf("GetByID returned %+v", found)
	}
	if conv.GetByID("msg_nope") != nil {
		t.Error("GetByID on unknown ID should return nil")
	}
}

func TestConversation_Snapshot_Copy(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("a"))
	snap := conv.Snapshot()

	conv.Append(NewUserMessage("b"))
	if len(snap) != 1 {
		t.Errorf("snapshot should not grow with conversation, len = %d", len(snap))
	}
}

func TestConversation_ExportMarkdown(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("What's my attendance?"))
	conv.Append(NewBotMessage("You have 85% attendance"))

	md := conv.ExportMarkdown()
	if !strings.Contains(md, "**You**") {
		t.Error("export should contain the user label")
	}
	if !strings.Contains(md, "You have 85% attendance") {
		t.Error("export should contain the bot reply")
	}
}

// =============================================================================
// CHAT RECORD TESTS
// =============================================================================

func TestRecordsToMessages(t *testing.T) {
	now := time.Now()
	records := []ChatRecord{
		{ID: "rec1", Query: "q1", Response: "r1", Timestamp: now},
		{ID: "rec2", Query: "q2", Response: "r2", Timestamp: now},
	}

	msgs := RecordsToMessages(records)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}

	if msgs[0].Sender != SenderUser || msgs[0].Text != "q1" {
		t.Errorf("msgs[0] = %+v", msgs[0])
	}
	if msgs[1].Sender != SenderBot || msgs[1].Text != "r1" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
	if msgs[1].ID != "rec1" {
		t.Errorf("bot message should keep the server record ID, got %q", msgs[1].ID)
	}
	if msgs[0].ID != "rec1_q" {
		t.Errorf("user message should derive its ID from the record, got %q", msgs[0].ID)
	}
}

func TestRecordsToMessages_Empty(t *testing.T) {
	msgs := RecordsToMessages(nil)
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
}

func TestChatRecord_Preview(t *testing.T) {
	rec := ChatRecord{Query: "line one\nline two of a rather long query string"}
	p := rec.Preview(20)
	if strings.Contains(p, "\n") {
		t.Error("preview should be single-line")
	}
	if len([]rune(p)) > 20 {
		t.Errorf("preview too long: %q", p)
	}
}
