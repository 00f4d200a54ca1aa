// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea terminal interface for genie.
//
// This file renders the notification store's visible toasts. Toasts appear
// in the bottom-right corner and auto-dismiss, so the user keeps typing
// while they are shown.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/genie-tui/internal/model"
	"github.com/jeranaias/genie-tui/internal/notify"
	"github.com/jeranaias/genie-tui/internal/ui/styles"
)

// RenderToast renders a single toast notification box.
func RenderToast(toast notify.Toast, width int) string {
	maxWidth := 60
	if width > 0 && width-8 < maxWidth {
		maxWidth = width - 8
	}
	if maxWidth < 30 {
		maxWidth = 30
	}

	var accent lipgloss.AdaptiveColor
	var icon string
	switch toast.Kind {
	case model.KindError:
		accent = styles.Rose
		icon = styles.StatusIndicators.Error
	case model.KindWarning:
		accent = styles.Amber
		icon = styles.StatusIndicators.Warning
	case model.KindSuccess:
		accent = styles.Emerald
		icon = styles.StatusIndicators.Success
	default:
		accent = styles.Cyan
		icon = styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)
	messageStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	message := toast.Message
	if len(message) > maxWidth-10 {
		message = wrapToastText(message, maxWidth-10)
	}
	content := iconStyle.Render(icon+" ") + messageStyle.Render(message)

	hintStyle := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)
	hints := []string{toast.Actor}
	if secs := int(toast.TimeRemaining(time.Now()).Seconds()); secs > 0 {
		hints = append(hints, fmt.Sprintf("%ds", secs))
	}
	content += "\n" + hintStyle.Render(strings.Join(hints, "  "))

	box := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		MaxWidth(maxWidth)
	return box.Render(content)
}

// RenderToastStack renders the visible toasts stacked vertically, newest at
// the bottom, right-aligned for bottom-right placement.
func RenderToastStack(toasts []notify.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(toast, width))
	}

	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	return lipgloss.NewStyle().
		MarginRight(2).
		MarginBottom(1).
		Render(stack)
}

// wrapToastText performs simple word wrapping for toast messages.
func wrapToastText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() == 0 {
			current.WriteString(word)
		} else if current.Len()+1+len(word) <= maxWidth {
			current.WriteString(" ")
			current.WriteString(word)
		} else {
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}
