// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/genie-tui/internal/history"
	"github.com/jeranaias/genie-tui/internal/model"
	"github.com/jeranaias/genie-tui/internal/notify"
	"github.com/jeranaias/genie-tui/internal/session"
	"github.com/jeranaias/genie-tui/internal/util"
)

// sendFailedText is the toast shown when a chat request fails. The inline
// fallback bubble carries session.FallbackErrorText; the toast names the
// operation.
const sendFailedText = "Failed to send message. Please try again."

// historyFailedText is the toast shown when a history fetch fails.
const historyFailedText = "Failed to load chat history. Please try again."

// Update is the single message pump for the interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case session.SendResultMsg:
		applied := m.log.ApplySendResult(msg)
		if applied && msg.Err != nil {
			m.toasts.Error(sendFailedText, "Genie")
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case session.HistoryMsg:
		applied := m.log.ApplyHistory(msg)
		if applied && msg.Err != nil {
			m.toasts.Error(historyFailedText, "Genie")
		}
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, nil

	case session.ClearServerMsg:
		// Server-side delete is best-effort; failures are logged by the
		// session log and not surfaced here.
		m.log.ApplyClearResult(msg)
		return m, nil

	case session.RatingMsg:
		// Rating failures are logged by the session log, never surfaced.
		m.log.ApplyRating(msg)
		if msg.Err == nil {
			m.toasts.Success("Thanks for your feedback!", "Genie")
		}
		m.refreshTranscript()
		return m, nil

	case history.LoadedMsg:
		m.panel.ApplyLoaded(msg)
		m.clampHistoryIndex()
		return m, nil

	case history.ClearedMsg:
		m.panel.ApplyCleared(msg)
		m.clampHistoryIndex()
		if msg.Err == nil {
			m.toasts.Success("Chat history cleared.", "Genie")
		}
		return m, nil

	case notify.TickMsg:
		m.toasts.Expire(msg.Time)
		return m, notify.TickCmd()

	case notify.ChangedMsg:
		// Another instance rewrote the notification file; the view reads the
		// store directly, so just keep listening.
		return m, m.toasts.WatchCmd()
	}

	return m.updateComponents(msg)
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	headerHeight := 3
	inputHeight := 3
	statusHeight := 1
	bodyHeight := msg.Height - headerHeight - inputHeight - statusHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = bodyHeight
	}
	m.input.Width = msg.Width - 6

	m.rebuildRenderer()
	m.refreshTranscript()
	m.viewport.GotoBottom()
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes the help overlay.
		m.showHelp = false
		return m, nil
	}

	if m.showHistory {
		return m.handleHistoryKey(msg)
	}
	if m.showRecall {
		return m.handleRecallKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		if text := strings.TrimSpace(m.input.Value()); strings.HasPrefix(text, "/recall") {
			return m.recallSearch(strings.TrimSpace(strings.TrimPrefix(text, "/recall")))
		}
		cmd, ok := m.log.Send(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.refreshTranscript()
		m.viewport.GotoBottom()
		return m, cmd

	case key.Matches(msg, m.keyMap.History):
		return m.openHistory()

	case key.Matches(msg, m.keyMap.Clear):
		cmd := m.log.Clear()
		m.toasts.Info("Chat cleared.", "Genie")
		m.refreshTranscript()
		return m, cmd

	case key.Matches(msg, m.keyMap.RateUp):
		return m.rateLastBotMessage(model.RatingUp)

	case key.Matches(msg, m.keyMap.RateDown):
		return m.rateLastBotMessage(model.RatingDown)

	case key.Matches(msg, m.keyMap.Replay):
		return m.replayLastNotification()

	case key.Matches(msg, m.keyMap.Export):
		return m.exportChat()

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Close), key.Matches(msg, m.keyMap.History):
		m.showHistory = false
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.historyIndex > 0 {
			m.historyIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.historyIndex < m.panel.Len()-1 {
			m.historyIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.SelectRecord):
		if query, ok := m.panel.Select(m.historyIndex); ok {
			m.input.SetValue(query)
			m.input.CursorEnd()
			m.showHistory = false
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ClearServer):
		cmd, err := m.panel.Clear(m.log.UserID())
		if err != nil {
			m.toasts.Warning(err.Error(), "Genie")
			return m, nil
		}
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) openHistory() (tea.Model, tea.Cmd) {
	cmd, err := m.panel.Load(m.log.UserID())
	if err != nil {
		m.toasts.Warning(err.Error(), "Genie")
		return m, nil
	}
	m.showHistory = true
	m.historyIndex = 0
	return m, cmd
}

// rateLastBotMessage submits feedback for the most recent non-error bot
// message. The rating only renders after the backend acknowledges it.
func (m Model) rateLastBotMessage(rating model.Rating) (tea.Model, tea.Cmd) {
	msgs := m.log.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == model.SenderBot && !msgs[i].IsError {
			cmd := m.log.Rate(msgs[i].ID, rating)
			if cmd == nil {
				return m, nil
			}
			return m, cmd
		}
	}
	m.toasts.Info("Nothing to rate yet.", "Genie")
	return m, nil
}

// recallSearch runs an offline full-text search over the local archive and
// opens the results overlay. The archive is local SQLite, so the search runs
// inline rather than through a Cmd.
func (m Model) recallSearch(terms string) (tea.Model, tea.Cmd) {
	if m.searcher == nil {
		m.toasts.Info("Local archive is disabled.", "Genie")
		return m, nil
	}
	if terms == "" {
		m.toasts.Info("Usage: /recall <search terms>", "Genie")
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	results, err := m.searcher.Search(ctx, terms, 20)

	m.input.Reset()
	m.recallQuery = terms
	m.recallIndex = 0
	m.showRecall = true
	if err != nil {
		m.recallResults = nil
		m.recallErr = "Archive search failed: " + err.Error()
		return m, nil
	}
	m.recallResults = results
	m.recallErr = ""
	return m, nil
}

func (m Model) handleRecallKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Close):
		m.showRecall = false
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		if m.recallIndex > 0 {
			m.recallIndex--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.recallIndex < len(m.recallResults)-1 {
			m.recallIndex++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.SelectRecord):
		if m.recallIndex >= 0 && m.recallIndex < len(m.recallResults) {
			m.input.SetValue(m.recallResults[m.recallIndex].Query)
			m.input.CursorEnd()
			m.showRecall = false
		}
		return m, nil
	}
	return m, nil
}

// replayLastNotification re-raises the newest notification from the replay
// history as a fresh toast.
func (m Model) replayLastNotification() (tea.Model, tea.Cmd) {
	hist := m.toasts.History()
	if len(hist) == 0 {
		m.toasts.Info("No notifications to replay.", "Genie")
		return m, nil
	}
	m.toasts.Replay(hist[len(hist)-1])
	return m, nil
}

func (m Model) exportChat() (tea.Model, tea.Cmd) {
	if m.exportDir == "" {
		m.toasts.Warning("Export directory is not configured.", "Genie")
		return m, nil
	}
	if m.log.Len() == 0 {
		m.toasts.Info("Nothing to export.", "Genie")
		return m, nil
	}

	name := fmt.Sprintf("genie-chat-%s.md", time.Now().Format("20060102-150405"))
	path := filepath.Join(m.exportDir, name)
	if err := util.AtomicWriteFile(path, []byte(m.log.ExportMarkdown()), 0644); err != nil {
		m.toasts.Error("Failed to export chat: "+err.Error(), "Genie")
		return m, nil
	}
	m.toasts.Success("Chat exported to "+name, "Genie")
	return m, nil
}

// =============================================================================
// COMPONENT FANOUT
// =============================================================================

func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) clampHistoryIndex() {
	if m.historyIndex >= m.panel.Len() {
		m.historyIndex = m.panel.Len() - 1
	}
	if m.historyIndex < 0 {
		m.historyIndex = 0
	}
}
