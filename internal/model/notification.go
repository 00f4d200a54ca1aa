// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the Campus Genie
// TUI: chat messages, server-side history records, and notifications.
package model

import (
	"time"
)

// =============================================================================
// NOTIFICATION KIND
// =============================================================================

// NotificationKind classifies a transient notification.
type NotificationKind string

const (
	KindInfo    NotificationKind = "info"
	KindSuccess NotificationKind = "success"
	KindWarning NotificationKind = "warning"
	KindError   NotificationKind = "error"
)

// Valid reports whether the kind is one of the accepted values.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindInfo, KindSuccess, KindWarning, KindError:
		return true
	}
	return false
}

// =============================================================================
// NOTIFICATION TYPE
// =============================================================================

// Notification is a transient status event. A copy of every notification is
// kept in the capped replay history, which is the only durable part.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	Actor     string           `json:"actor"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification creates a notification with a fresh ID and timestamp.
func NewNotification(message string, kind NotificationKind, actor string) Notification {
	if !kind.Valid() {
		kind = KindInfo
	}
	if actor == "" {
		actor = "System"
	}
	return Notification{
		ID:        GenerateID(),
		Message:   message,
		Kind:      kind,
		Actor:     actor,
		CreatedAt: time.Now(),
	}
}
