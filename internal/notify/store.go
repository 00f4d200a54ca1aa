// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify decouples transient, cross-cutting status notifications
// from the components that trigger them.
package notify

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genie-tui/internal/model"
)

// MaxHistory is the replay history cap. Oldest entries are evicted first.
const MaxHistory = 50

// MaxVisible limits how many toasts are on screen at once.
const MaxVisible = 5

// Auto-dismiss durations per kind. Errors and warnings linger longer so
// they can be read.
const (
	InfoDuration    = 4 * time.Second
	WarningDuration = 6 * time.Second
	ErrorDuration   = 8 * time.Second
)

// DurationFor returns the auto-dismiss duration for a notification kind.
func DurationFor(kind model.NotificationKind) time.Duration {
	switch kind {
	case model.KindError:
		return ErrorDuration
	case model.KindWarning:
		return WarningDuration
	default:
		return InfoDuration
	}
}

// =============================================================================
// TOAST TYPE
// =============================================================================

// Toast is a notification currently in the visible queue, carrying its
// auto-dismiss deadline. Dismissing early simply removes the toast before
// the deadline; the history copy is unaffected either way.
type Toast struct {
	model.Notification
	Deadline time.Time
}

// TimeRemaining returns how long until the toast auto-dismisses.
func (t *Toast) TimeRemaining(now time.Time) time.Duration {
	remaining := t.Deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// =============================================================================
// STORE
// =============================================================================

// Store manages the visible toast queue and the persisted replay history.
// It is safe for concurrent use.
type Store struct {
	mu sync.Mutex

	visible []Toast
	history []model.Notification // insertion order, oldest first

	persist *persistence // nil when running without a data dir
	events  chan struct{}
	closed  bool
}

// NewStore creates a store persisting history to the given file path.
// An empty path disables persistence (used by tests and ephemeral runs).
// The history file is loaded if present; a missing or corrupt file starts
// the history empty rather than failing.
func NewStore(path string) (*Store, error) {
	s := &Store{
		visible: make([]Toast, 0),
		history: make([]model.Notification, 0),
		events:  make(chan struct{}, 1),
	}

	if path != "" {
		p, err := newPersistence(path, s.onExternalChange)
		if err != nil {
			return nil, err
		}
		s.persist = p
		s.history = p.load()
	}

	return s, nil
}

// Close detaches the file watcher and closes the event channel so any
// parked WatchCmd returns. The store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	if s.persist != nil {
		return s.persist.close()
	}
	return nil
}

// =============================================================================
// CORE OPERATIONS
// =============================================================================

// Add enqueues a visible notification and appends a copy to the history,
// evicting the oldest entry past the cap. The created notification is
// returned so callers can reference its ID.
func (s *Store) Add(message string, kind model.NotificationKind, actor string) model.Notification {
	n := model.NewNotification(message, kind, actor)

	s.mu.Lock()
	s.visible = append(s.visible, Toast{
		Notification: n,
		Deadline:     n.CreatedAt.Add(DurationFor(n.Kind)),
	})
	if len(s.visible) > MaxVisible {
		s.visible = s.visible[len(s.visible)-MaxVisible:]
	}

	s.history = append(s.history, n)
	if len(s.history) > MaxHistory {
		s.history = s.history[len(s.history)-MaxHistory:]
	}
	s.saveLocked()
	s.mu.Unlock()

	return n
}

// Info, Success, Warning, Error are convenience wrappers around Add.
func (s *Store) Info(message, actor string) model.Notification {
	return s.Add(message, model.KindInfo, actor)
}

func (s *Store) Success(message, actor string) model.Notification {
	return s.Add(message, model.KindSuccess, actor)
}

func (s *Store) Warning(message, actor string) model.Notification {
	return s.Add(message, model.KindWarning, actor)
}

func (s *Store) Error(message, actor string) model.Notification {
	return s.Add(message, model.KindError, actor)
}

// Dismiss removes a toast from the visible queue only. History is never
// touched by a dismissal.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.visible {
		if t.ID == id {
			s.visible = append(s.visible[:i], s.visible[i+1:]...)
			return
		}
	}
}

// Replay re-raises a history record as a brand new notification: both the
// visible queue and the history grow by one. The replayed record itself
// stays in history untouched.
func (s *Store) Replay(n model.Notification) model.Notification {
	return s.Add(n.Message, n.Kind, n.Actor)
}

// Expire drops visible toasts whose deadline has passed and returns the
// remaining queue. Driven by a periodic tick.
func (s *Store) Expire(now time.Time) []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.visible[:0]
	for _, t := range s.visible {
		if now.Before(t.Deadline) {
			active = append(active, t)
		}
	}
	s.visible = active

	out := make([]Toast, len(s.visible))
	copy(out, s.visible)
	return out
}

// ClearHistory empties the persisted history. The visible queue is
// unaffected.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make([]model.Notification, 0)
	s.saveLocked()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Visible returns a copy of the visible toast queue, oldest first.
func (s *Store) Visible() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Toast, len(s.visible))
	copy(out, s.visible)
	return out
}

// History returns a copy of the replay history in insertion order,
// oldest first.
func (s *Store) History() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.history))
	copy(out, s.history)
	return out
}

// HasVisible returns true if any toast is on screen.
func (s *Store) HasVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visible) > 0
}

// =============================================================================
// EXTERNAL CHANGE HANDLING
// =============================================================================

// onExternalChange reloads history after another instance wrote the file.
// Last-write-wins: the on-disk state replaces the in-memory history.
func (s *Store) onExternalChange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.persist == nil {
		return
	}
	s.history = s.persist.load()

	// The send stays under the lock: Close closes the channel under the same
	// lock, so a send can never race the close.
	select {
	case s.events <- struct{}{}:
	default:
	}
}

// saveLocked persists the history. Callers hold s.mu. Write failures are
// ignored: history is a convenience, losing it must never break the UI.
func (s *Store) saveLocked() {
	if s.persist != nil {
		s.persist.save(s.history)
	}
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to expire visible toasts.
type TickMsg struct {
	Time time.Time
}

// ChangedMsg signals that another instance rewrote the history file.
type ChangedMsg struct{}

// TickCmd returns a command that ticks four times a second, matching the
// finest-grained countdown the toast stack displays.
func TickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// WatchCmd returns a command that blocks until the history file changes
// externally. Re-issue it after each ChangedMsg.
func (s *Store) WatchCmd() tea.Cmd {
	return func() tea.Msg {
		_, ok := <-s.events
		if !ok {
			return nil
		}
		return ChangedMsg{}
	}
}
