// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history presents a read/delete view over the server-persisted
// record set, independent of the live session log.
//
// The panel is a small state machine (idle -> loading -> loaded|errored),
// re-entrant on every Load or Clear. There is no caching: every time the
// panel becomes visible it re-fetches, so what it shows is as fresh as the
// backend answered last. Selecting a record surfaces its query text for the
// compose input; it never mutates the session log.
package history

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genie-tui/internal/genie"
	"github.com/jeranaias/genie-tui/internal/model"
)

// ErrNoUser is returned when an operation requires a logged-in user.
var ErrNoUser = errors.New("user ID is required to access chat history")

// =============================================================================
// STATE
// =============================================================================

// State is the panel's position in its load cycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
)

// String returns the state name for status display.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// =============================================================================
// PANEL
// =============================================================================

// Panel is the history panel controller. Safe for concurrent use.
type Panel struct {
	mu sync.Mutex

	client  *genie.Client
	state   State
	records []model.ChatRecord
	errText string

	// gen invalidates in-flight fetches when a newer Load/Clear starts.
	gen uint64
}

// NewPanel creates an idle panel backed by the given client.
func NewPanel(client *genie.Client) *Panel {
	return &Panel{
		client:  client,
		state:   StateIdle,
		records: make([]model.ChatRecord, 0),
	}
}

// =============================================================================
// MESSAGES (bubbletea)
// =============================================================================

// LoadedMsg carries the outcome of a Load.
type LoadedMsg struct {
	Gen     uint64
	Records []model.ChatRecord
	Err     error
}

// ClearedMsg carries the outcome of a Clear.
type ClearedMsg struct {
	Gen uint64
	Err error
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Load starts a fetch of the user's record set. It fails fast with ErrNoUser
// (and performs no network call) when userID is empty. On success the
// returned command yields a LoadedMsg for ApplyLoaded.
func (p *Panel) Load(userID string) (tea.Cmd, error) {
	if userID == "" {
		p.mu.Lock()
		p.state = StateErrored
		p.errText = ErrNoUser.Error()
		p.mu.Unlock()
		return nil, ErrNoUser
	}

	p.mu.Lock()
	p.state = StateLoading
	p.errText = ""
	p.gen++
	gen := p.gen
	client := p.client
	p.mu.Unlock()

	return func() tea.Msg {
		records, err := client.History(context.Background(), userID)
		return LoadedMsg{Gen: gen, Records: records, Err: err}
	}, nil
}

// ApplyLoaded folds a fetch outcome into the panel. A non-nil error moves
// to errored with the error's text surfaced; success replaces the record
// list wholesale.
func (p *Panel) ApplyLoaded(msg LoadedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if msg.Gen != p.gen {
		return
	}

	if msg.Err != nil {
		p.state = StateErrored
		p.errText = msg.Err.Error()
		p.records = make([]model.ChatRecord, 0)
		return
	}

	p.state = StateLoaded
	p.records = msg.Records
	if p.records == nil {
		p.records = make([]model.ChatRecord, 0)
	}
}

// Clear starts a delete-all for the user. Requires a user ID like Load.
// The local list is only emptied after the server confirms; failure leaves
// it untouched and surfaces the error.
func (p *Panel) Clear(userID string) (tea.Cmd, error) {
	if userID == "" {
		p.mu.Lock()
		p.state = StateErrored
		p.errText = ErrNoUser.Error()
		p.mu.Unlock()
		return nil, ErrNoUser
	}

	p.mu.Lock()
	p.state = StateLoading
	p.errText = ""
	p.gen++
	gen := p.gen
	client := p.client
	p.mu.Unlock()

	return func() tea.Msg {
		err := client.ClearHistory(context.Background(), userID)
		return ClearedMsg{Gen: gen, Err: err}
	}, nil
}

// ApplyCleared folds a delete outcome into the panel.
func (p *Panel) ApplyCleared(msg ClearedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if msg.Gen != p.gen {
		return
	}

	if msg.Err != nil {
		p.state = StateErrored
		p.errText = msg.Err.Error()
		return
	}

	p.state = StateLoaded
	p.records = make([]model.ChatRecord, 0)
}

// Select returns the query text of the record at index, for re-populating
// the compose input. It never mutates the session log or the panel.
func (p *Panel) Select(index int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if index < 0 || index >= len(p.records) {
		return "", false
	}
	return p.records[index].Query, true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the panel's current lifecycle state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Records returns a copy of the current record list.
func (p *Panel) Records() []model.ChatRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.ChatRecord, len(p.records))
	copy(out, p.records)
	return out
}

// Err returns the surfaced error text, or "" when none.
func (p *Panel) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errText
}

// Len returns the number of records shown.
func (p *Panel) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}
