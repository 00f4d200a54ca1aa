// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
//
// This file defines keyboard bindings for the chat interface, along with
// help text generation for the status bar and help overlay.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Submit   key.Binding
	History  key.Binding
	Clear    key.Binding
	RateUp   key.Binding
	RateDown key.Binding
	Replay   key.Binding
	Export   key.Binding
	Help     key.Binding
	Close    key.Binding
	Quit     key.Binding

	// History panel only
	SelectRecord key.Binding
	ClearServer  key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		History: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("C-h", "history"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear chat"),
		),
		RateUp: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "rate up"),
		),
		RateDown: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "rate down"),
		),
		Replay: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "replay notification"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "export"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
		SelectRecord: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "reuse query"),
		),
		ClearServer: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "clear all"),
		),
	}
}

// ShortHelp returns the most commonly used shortcuts for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.History, k.Clear, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Submit, k.Clear, k.RateUp, k.RateDown},
		{k.History, k.SelectRecord, k.ClearServer},
		{k.Replay, k.Export, k.Help, k.Close, k.Quit},
	}
}

// HistoryHelp returns the bindings active while the history panel is open.
func (k KeyMap) HistoryHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.SelectRecord, k.ClearServer, k.Close}
}
