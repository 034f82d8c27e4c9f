package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/lookout/internal/journal"
	"github.com/tessro/lookout/internal/tui/styles"
)

// History displays commands recently issued from this machine
type History struct{}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{}
}

// Render renders the history panel
func (h *History) Render(entries []journal.Entry, width, height int, focused bool) string {
	title := styles.PanelTitle("Command History", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No commands sent yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []journal.Entry, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		icon := styles.Ok.Render("✓")
		if entry.Status == journal.StatusFailed {
			icon = styles.Failed.Render("✗")
		}

		timeAgo := formatTimeAgo(entry.CreatedAt)
		info := fmt.Sprintf("%s → %s", entry.CommandType.Label(), entry.DeviceModel)
		info = truncate(info, width-4-len(timeAgo))

		// 2 for icon + space
		padding := width - 2 - lipgloss.Width(info) - len(timeAgo)
		if padding < 1 {
			padding = 1
		}

		lines = append(lines, fmt.Sprintf("%s %s%s%s",
			icon,
			info,
			styles.Repeat(" ", padding),
			styles.Dim.Render(timeAgo)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
