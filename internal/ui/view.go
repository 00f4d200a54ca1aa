// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/genie-tui/internal/model"
	"github.com/jeranaias/genie-tui/internal/ui/styles"
	"github.com/jeranaias/genie-tui/internal/util"
)

// View renders the full interface. Layout, top to bottom:
// header, transcript (or history panel), input line, status bar.
// Toasts composite over the bottom-right corner.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting genie..."
	}

	var body string
	switch {
	case m.showHelp:
		body = m.renderHelp()
	case m.showHistory:
		body = m.renderHistoryPanel()
	case m.showRecall:
		body = m.renderRecallPanel()
	default:
		body = m.viewport.View()
	}

	baseView := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
	)

	if m.toasts.HasVisible() {
		overlay := RenderToastStack(m.toasts.Visible(), m.width)
		return m.overlayToasts(baseView, overlay)
	}
	return baseView
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("Campus Genie")
	subtitle := m.theme.HeaderSubtitle.Render("your campus assistant")
	return m.theme.Header.Width(m.width - 2).Render(title + "  " + subtitle)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var left string
	if m.log.Pending() {
		left = m.spinner.View() + m.theme.ThinkingText.Render(" Genie is thinking...")
	} else if m.userLabel != "" {
		left = m.theme.StatusOnline.Render(styles.StatusIndicators.Active) + " " + m.userLabel
	} else {
		left = m.theme.StatusError.Render(styles.StatusIndicators.Warning) + " not logged in"
	}

	var hints []string
	bindings := m.keyMap.ShortHelp()
	if m.showHistory {
		bindings = m.keyMap.HistoryHelp()
	}
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport. Called
// whenever the session log changes, not on every View.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	msgs := m.log.Messages()
	if len(msgs) == 0 {
		m.viewport.SetContent(m.theme.PanelEmpty.Render(
			"\n  Ask Campus Genie about classes, attendance, campus events, and more.\n"))
		return
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m Model) renderMessage(msg *model.Message) string {
	label := m.theme.SenderLabel.Render(msg.Sender.DisplayName())
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	head := label + " " + ts
	if msg.Rating == model.RatingUp {
		head += " " + m.theme.RatingUp.Render("+1")
	} else if msg.Rating == model.RatingDown {
		head += " " + m.theme.RatingDown.Render("-1")
	}

	maxWidth := m.width - 10
	if maxWidth < 20 {
		maxWidth = 20
	}

	switch {
	case msg.IsError:
		return head + "\n" + m.theme.ErrorBubble.MaxWidth(maxWidth).Render(msg.Text)
	case msg.Sender == model.SenderUser:
		return head + "\n" + m.theme.UserBubble.MaxWidth(maxWidth).Render(msg.Text)
	default:
		return head + "\n" + m.theme.BotBubble.MaxWidth(maxWidth).Render(m.renderBotText(msg.Text))
	}
}

// renderBotText runs bot responses through glamour when markdown rendering
// is enabled; otherwise (or on render failure) the raw text is shown.
func (m Model) renderBotText(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// HISTORY PANEL
// =============================================================================

func (m Model) renderHistoryPanel() string {
	width := m.width - 4
	if width < 30 {
		width = 30
	}
	height := m.viewport.Height - 2
	if height < 3 {
		height = 3
	}

	title := m.theme.PanelTitle.Render("Chat History")
	var lines []string
	lines = append(lines, title, "")

	switch {
	case m.panel.Err() != "":
		lines = append(lines, m.theme.PanelError.Render(
			styles.StatusIndicators.Error+" "+m.panel.Err()))
	case m.panel.Len() == 0:
		lines = append(lines, m.theme.PanelEmpty.Render("No chat history found."))
	default:
		records := m.panel.Records()
		// Window the list around the selection.
		visible := height - 2
		if visible < 1 {
			visible = 1
		}
		start := 0
		if m.historyIndex >= visible {
			start = m.historyIndex - visible + 1
		}
		end := start + visible
		if end > len(records) {
			end = len(records)
		}
		for i := start; i < end; i++ {
			rec := records[i]
			line := fmt.Sprintf("%s  %s",
				rec.Timestamp.Format("Jan 02 15:04"),
				util.TruncateWidth(rec.Query, width-20))
			if i == m.historyIndex {
				lines = append(lines, m.theme.PanelItemSelected.Render("> "+line))
			} else {
				lines = append(lines, m.theme.PanelItem.Render("  "+line))
			}
		}
	}

	return m.theme.PanelBox.Width(width).Height(height).Render(
		strings.Join(lines, "\n"))
}

// =============================================================================
// RECALL OVERLAY
// =============================================================================

// renderRecallPanel shows offline archive search results for /recall.
func (m Model) renderRecallPanel() string {
	width := m.width - 4
	if width < 30 {
		width = 30
	}
	height := m.viewport.Height - 2
	if height < 3 {
		height = 3
	}

	title := m.theme.PanelTitle.Render("Recall: " + m.recallQuery)
	var lines []string
	lines = append(lines, title, "")

	switch {
	case m.recallErr != "":
		lines = append(lines, m.theme.PanelError.Render(
			styles.StatusIndicators.Error+" "+m.recallErr))
	case len(m.recallResults) == 0:
		lines = append(lines, m.theme.PanelEmpty.Render("No archived exchanges match."))
	default:
		visible := height - 2
		if visible < 1 {
			visible = 1
		}
		start := 0
		if m.recallIndex >= visible {
			start = m.recallIndex - visible + 1
		}
		end := start + visible
		if end > len(m.recallResults) {
			end = len(m.recallResults)
		}
		for i := start; i < end; i++ {
			ex := m.recallResults[i]
			line := fmt.Sprintf("%s  %s",
				ex.CreatedAt.Format("Jan 02 15:04"),
				util.TruncateWidth(ex.Query, width-20))
			if i == m.recallIndex {
				lines = append(lines, m.theme.PanelItemSelected.Render("> "+line))
			} else {
				lines = append(lines, m.theme.PanelItem.Render("  "+line))
			}
		}
	}

	return m.theme.PanelBox.Width(width).Height(height).Render(
		strings.Join(lines, "\n"))
}

// =============================================================================
// HELP OVERLAY
// =============================================================================

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.PanelTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, group := range m.keyMap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				m.theme.ShortcutKey.Render(fmt.Sprintf("%-8s", h.Key)),
				m.theme.ShortcutDesc.Render(h.Desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.theme.PanelEmpty.Render("  press any key to close"))
	return m.theme.PanelBox.Width(m.width - 4).Render(b.String())
}

// =============================================================================
// TOAST OVERLAY
// =============================================================================

// overlayToasts composites the toast stack over the base view's bottom-right
// corner without blocking the rest of the UI.
func (m Model) overlayToasts(baseView, toastView string) string {
	baseLines := strings.Split(baseView, "\n")
	toastLines := strings.Split(toastView, "\n")

	startRow := m.height - len(toastLines) - 2
	if startRow < 0 {
		startRow = 0
	}

	result := make([]string, len(baseLines))
	for i, baseLine := range baseLines {
		toastLineIdx := i - startRow
		if toastLineIdx < 0 || toastLineIdx >= len(toastLines) {
			result[i] = baseLine
			continue
		}
		toastLine := toastLines[toastLineIdx]
		toastWidth := lipgloss.Width(toastLine)
		if toastWidth == 0 {
			result[i] = baseLine
			continue
		}

		cut := m.width - toastWidth - 1
		if cut < 0 {
			cut = 0
		}
		baseLine = truncateToWidth(baseLine, cut)
		if pad := cut - lipgloss.Width(baseLine); pad > 0 {
			baseLine += strings.Repeat(" ", pad)
		}
		result[i] = baseLine + toastLine
	}
	return strings.Join(result, "\n")
}

// truncateToWidth truncates a string to fit within a given visible width.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}

	currentWidth := 0
	var result strings.Builder
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if currentWidth+rw > width {
			break
		}
		result.WriteRune(r)
		currentWidth += rw
	}
	return result.String()
}
