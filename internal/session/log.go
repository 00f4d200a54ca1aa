// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session maintains the ordered conversation for the active user and
// mediates outbound chat requests.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genie-tui/internal/genie"
	"github.com/jeranaias/genie-tui/internal/model"
)

// FallbackErrorText is the fixed bot reply substituted for a failed send.
const FallbackErrorText = "Sorry, I encountered an error while processing your request. Please try again."

// Error strings surfaced alongside the log.
const (
	errSendFailed    = "Failed to send message. Please try again."
	errHistoryFailed = "Failed to load chat history. Please try again."
)

// Recorder receives successful exchanges for local archival. Implementations
// are best-effort; failures are logged, never surfaced.
type Recorder interface {
	Record(query, response string, ts time.Time) error
}

// =============================================================================
// SESSION LOG
// =============================================================================

// Log is the session message log. It is safe for concurrent use; the tea
// command constructors capture state under the lock and the Apply* methods
// re-acquire it when completions arrive.
type Log struct {
	mu sync.Mutex

	client *genie.Client
	conv   *model.Conversation

	userID  string
	pending bool
	errText string

	// gen tags outbound requests; stale completions are discarded.
	gen uint64

	recorder Recorder
	debug    *log.Logger
}

// NewLog creates a session log backed by the given client.
func NewLog(client *genie.Client) *Log {
	return &Log{
		client: client,
		conv:   model.NewConversation(),
	}
}

// SetRecorder attaches a best-effort archive for successful exchanges.
func (l *Log) SetRecorder(r Recorder) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recorder = r
}

// SetDebugLog attaches a logger for swallowed failures (ratings, server-side
// deletes). A nil logger discards them.
func (l *Log) SetDebugLog(logger *log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = logger
}

// =============================================================================
// MESSAGES (bubbletea)
// =============================================================================

// SendResultMsg carries the outcome of a chat request.
type SendResultMsg struct {
	Gen   uint64
	Query string
	Text  string
	Err   error
}

// HistoryMsg carries the outcome of a history fetch.
type HistoryMsg struct {
	Gen     uint64
	Records []model.ChatRecord
	Err     error
}

// ClearServerMsg carries the outcome of the best-effort server-side delete
// triggered by Clear.
type ClearServerMsg struct {
	Err error
}

// RatingMsg carries the outcome of a rating request.
type RatingMsg struct {
	MessageID string
	Rating    model.Rating
	Err       error
}

// =============================================================================
// SEND
// =============================================================================

// Send validates and submits a query. It returns false (and no command) when
// the text is empty/whitespace or a send is already pending. On acceptance
// the user message is appended synchronously, the pending flag is set, and
// the returned command performs the network call.
func (l *Log) Send(text string) (tea.Cmd, bool) {
	trimmed := strings.TrimSpace(text)

	l.mu.Lock()
	defer l.mu.Unlock()

	if trimmed == "" || l.pending {
		return nil, false
	}

	l.conv.Append(model.NewUserMessage(trimmed))
	l.pending = true
	l.errText = ""

	gen := l.gen
	client := l.client
	userID := l.userID

	cmd := func() tea.Msg {
		resp, err := client.Chat(context.Background(), trimmed, userID)
		if err != nil {
			return SendResultMsg{Gen: gen, Query: trimmed, Err: err}
		}
		return SendResultMsg{Gen: gen, Query: trimmed, Text: resp.Text}
	}
	return cmd, true
}

// ApplySendResult folds a completed send back into the log. The pending flag
// is always released; the log itself only changes when the completion's
// generation is still current. Reports whether the completion was applied,
// so callers don't surface outcomes of discarded stale sends.
func (l *Log) ApplySendResult(msg SendResultMsg) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = false

	if msg.Gen != l.gen {
		l.logf("discarding stale send completion (gen %d, current %d)", msg.Gen, l.gen)
		return false
	}

	if msg.Err != nil {
		l.conv.Append(model.NewErrorMessage(FallbackErrorText))
		l.errText = errSendFailed
		return true
	}

	bot := model.NewBotMessage(msg.Text)
	l.conv.Append(bot)

	if l.recorder != nil {
		if err := l.recorder.Record(msg.Query, msg.Text, bot.Timestamp); err != nil {
			l.logf("archive write failed: %v", err)
		}
	}
	return true
}

// =============================================================================
// USER / HISTORY
// =============================================================================

// SetUser switches the active user. A login returns a command that fetches
// the persisted history; a logout ("" user) clears the log unconditionally
// and returns nil. Either way the generation is bumped so in-flight
// completions from the previous user cannot land.
func (l *Log) SetUser(userID string) tea.Cmd {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.userID = userID
	l.gen++
	l.errText = ""

	if userID == "" {
		l.conv.Clear()
		return nil
	}
	return l.fetchHistoryLocked()
}

// FetchHistory returns a command that reloads the persisted record set for
// the current user. The fetched set replaces the local log wholesale.
func (l *Log) FetchHistory() tea.Cmd {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.userID == "" {
		return nil
	}
	return l.fetchHistoryLocked()
}

func (l *Log) fetchHistoryLocked() tea.Cmd {
	gen := l.gen
	client := l.client
	userID := l.userID

	return func() tea.Msg {
		records, err := client.History(context.Background(), userID)
		return HistoryMsg{Gen: gen, Records: records, Err: err}
	}
}

// ApplyHistory folds a history fetch into the log, replacing it. Local-only
// messages accumulated since the fetch started are lost; that is the
// intended resync behavior. Reports whether the fetch was applied; stale
// fetches are discarded without touching the log.
func (l *Log) ApplyHistory(msg HistoryMsg) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.Gen != l.gen {
		return false
	}

	if msg.Err != nil {
		l.errText = errHistoryFailed
		return true
	}

	l.conv.Replace(model.RecordsToMessages(msg.Records))
	return true
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear empties the log synchronously and bumps the generation so any
// in-flight completion is discarded. When a user is set, the returned command
// additionally issues a best-effort delete of the server-side record set.
func (l *Log) Clear() tea.Cmd {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.conv.Clear()
	l.errText = ""
	l.gen++

	if l.userID == "" {
		return nil
	}

	client := l.client
	userID := l.userID
	return func() tea.Msg {
		err := client.ClearHistory(context.Background(), userID)
		return ClearServerMsg{Err: err}
	}
}

// ApplyClearResult handles the server-side delete outcome. Failures are
// logged, never surfaced: the local log is already empty either way.
func (l *Log) ApplyClearResult(msg ClearServerMsg) {
	if msg.Err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logf("server-side history delete failed: %v", msg.Err)
}

// =============================================================================
// RATING
// =============================================================================

// Rate submits a thumbs up/down for a message. There is no optimistic
// update: the local Rating field only changes after the backend acknowledges
// (see ApplyRating). Returns nil for invalid ratings or unknown message IDs.
func (l *Log) Rate(messageID string, rating model.Rating) tea.Cmd {
	if !rating.Valid() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conv.GetByID(messageID) == nil {
		return nil
	}

	client := l.client
	userID := l.userID
	return func() tea.Msg {
		err := client.Rate(context.Background(), messageID, rating, userID)
		return RatingMsg{MessageID: messageID, Rating: rating, Err: err}
	}
}

// ApplyRating mutates the matched message's rating after server
// acknowledgment. Failures leave state exactly as it was and are logged
// only; ratings are best-effort by design of the contract.
func (l *Log) ApplyRating(msg RatingMsg) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.Err != nil {
		l.logf("rating %s for %s failed: %v", msg.Rating, msg.MessageID, msg.Err)
		return
	}

	if m := l.conv.GetByID(msg.MessageID); m != nil {
		m.Rating = msg.Rating
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a snapshot of the current log in display order.
func (l *Log) Messages() []*model.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.Snapshot()
}

// Pending reports whether a chat request is in flight.
func (l *Log) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Err returns the surfaced error string, or "" when none.
func (l *Log) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errText
}

// UserID returns the active user, or "" when logged out.
func (l *Log) UserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userID
}

// Generation returns the current request generation.
func (l *Log) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.Len()
}

// ExportMarkdown renders the current log as a Markdown transcript.
func (l *Log) ExportMarkdown() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conv.ExportMarkdown()
}

// logf writes to the debug log if one is attached. Callers hold l.mu.
func (l *Log) logf(format string, args ...interface{}) {
	if l.debug != nil {
		l.debug.Printf(format, args...)
	}
}
