package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/tui/styles"
)

// Control displays the command buttons for the selected device
type Control struct {
	cursor int
}

// NewControl creates a new Control component
func NewControl() *Control {
	return &Control{}
}

// CursorNext moves to the next button
func (c *Control) CursorNext() {
	if c.cursor < len(core.KnownCommands)-1 {
		c.cursor++
	}
}

// CursorPrev moves to the previous button
func (c *Control) CursorPrev() {
	if c.cursor > 0 {
		c.cursor--
	}
}

// Command returns the command under the cursor
func (c *Control) Command() core.CommandType {
	return core.KnownCommands[c.cursor]
}

// Render renders the control panel. spin is the current spinner frame.
func (c *Control) Render(selected *core.Device, streaming bool, spin string, width, height int, focused bool) string {
	var content string
	title := styles.PanelTitle("Control", focused)

	if selected == nil {
		content = styles.Muted.Render("Select a device to begin.")
	} else {
		title = styles.PanelTitle("Control: "+selected.Name(), focused)
		content = c.renderButtons(streaming, spin, focused)
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

func (c *Control) renderButtons(streaming bool, spin string, focused bool) string {
	buttons := make([]string, 0, len(core.KnownCommands))
	for i, cmd := range core.KnownCommands {
		label := fmt.Sprintf("%d %s", i+1, cmd.Label())

		style := styles.Button
		switch {
		case focused && i == c.cursor:
			style = styles.ActiveButton
		case cmd == core.CommandStreamStop:
			style = styles.StopButton
		}
		buttons = append(buttons, style.Render(label))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, interleave(buttons, " ")...)

	status := styles.Dim.Render("Stream idle")
	if streaming {
		status = styles.Streaming.Render(spin + " STREAMING...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, row, "", status)
}

func interleave(items []string, sep string) []string {
	out := make([]string, 0, len(items)*2)
	for i, item := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, item)
	}
	return out
}
