// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/genie-tui/internal/archive"
	"github.com/jeranaias/genie-tui/internal/history"
	"github.com/jeranaias/genie-tui/internal/notify"
	"github.com/jeranaias/genie-tui/internal/session"
	"github.com/jeranaias/genie-tui/internal/ui/styles"
)

// Searcher provides offline full-text search over archived exchanges. It is
// satisfied by *archive.Archive and backs the /recall command.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]archive.Exchange, error)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the UI model. Log, Panel, and Toasts are required; the
// rest have sensible zero-value behavior.
type Options struct {
	Log    *session.Log
	Panel  *history.Panel
	Toasts *notify.Store

	// Archive backs the /recall command; nil disables it.
	Archive Searcher

	// UserID starts the session logged in when non-empty.
	UserID string
	// UserLabel is shown in the status bar (empty = UserID).
	UserLabel string
	// BackendURL is shown in the status bar.
	BackendURL string
	// Markdown enables glamour rendering for bot messages.
	Markdown bool
	// ExportDir is where chat exports are written (empty = disabled).
	ExportDir string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the genie chat interface.
type Model struct {
	// Domain state
	log      *session.Log
	panel    *history.Panel
	toasts   *notify.Store
	searcher Searcher

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Markdown rendering for bot messages (nil = plain text)
	renderer *glamour.TermRenderer
	markdown bool

	// Overlays
	showHistory  bool
	historyIndex int
	showHelp     bool

	// Recall overlay (offline archive search)
	showRecall    bool
	recallQuery   string
	recallIndex   int
	recallResults []archive.Exchange
	recallErr     string

	// Status
	initialUser string
	userLabel   string
	backendURL  string
	exportDir   string
	quitting    bool
}

// New creates the chat interface model.
func New(opts Options) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask Campus Genie anything..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	label := opts.UserLabel
	if label == "" {
		label = opts.UserID
	}

	return Model{
		log:         opts.Log,
		panel:       opts.Panel,
		toasts:      opts.Toasts,
		searcher:    opts.Archive,
		theme:       theme,
		input:       input,
		spinner:     sp,
		keyMap:      DefaultKeyMap(),
		markdown:    opts.Markdown,
		initialUser: opts.UserID,
		userLabel:   label,
		backendURL:  opts.BackendURL,
		exportDir:   opts.ExportDir,
	}
}

// Init starts the toast ticker and watcher and, when a user is configured,
// kicks off the initial history fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		notify.TickCmd(),
		m.toasts.WatchCmd(),
	}
	if m.initialUser != "" {
		if cmd := m.log.SetUser(m.initialUser); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// rebuildRenderer recreates the glamour renderer for the current width.
// Glamour word-wraps at render time, so the renderer must track resizes.
func (m *Model) rebuildRenderer() {
	if !m.markdown {
		return
	}
	wrap := m.width - 10
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Fall back to plain text rendering.
		m.renderer = nil
		return
	}
	m.renderer = r
}
