package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/tui/styles"
)

// Gallery displays the media captured by the selected device
type Gallery struct {
	cursor int
	offset int
}

// NewGallery creates a new Gallery component
func NewGallery() *Gallery {
	return &Gallery{}
}

// CursorNext moves the cursor down
func (g *Gallery) CursorNext(count int) {
	if g.cursor < count-1 {
		g.cursor++
	}
}

// CursorPrev moves the cursor up
func (g *Gallery) CursorPrev() {
	if g.cursor > 0 {
		g.cursor--
	}
}

// Reset moves the cursor back to the newest item
func (g *Gallery) Reset() {
	g.cursor = 0
	g.offset = 0
}

// Cursor returns the cursor index
func (g *Gallery) Cursor() int {
	return g.cursor
}

// Render renders the gallery panel
func (g *Gallery) Render(media []core.MediaFile, width, height int, focused bool) string {
	title := styles.PanelTitle("Captured Media", focused)

	var content string
	if len(media) == 0 {
		content = styles.Muted.Render("No media")
	} else {
		content = g.renderMedia(media, width-4, height-4, focused)
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

func (g *Gallery) renderMedia(media []core.MediaFile, width, maxLines int, focused bool) string {
	if g.cursor >= len(media) {
		g.cursor = len(media) - 1
	}

	visible := maxLines - 1 // Leave room for "more" indicator
	if visible < 1 {
		visible = 1
	}
	if g.cursor < g.offset {
		g.offset = g.cursor
	}
	if g.cursor >= g.offset+visible {
		g.offset = g.cursor - visible + 1
	}

	end := g.offset + visible
	if end > len(media) {
		end = len(media)
	}

	lines := make([]string, 0, end-g.offset+1)
	for i := g.offset; i < end; i++ {
		file := media[i]

		age := ""
		if !file.CreatedAt.IsZero() {
			age = humanize.Time(file.CreatedAt)
		}

		// Captions are at most 20 characters wide.
		padding := width - 2 - 20 - len(age)
		if padding < 1 {
			padding = 1
		}

		line := fmt.Sprintf("%-20s%s%s", file.Caption(), styles.Repeat(" ", padding), styles.Dim.Render(age))
		if focused && i == g.cursor {
			line = styles.SelectedRow.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	if end < len(media) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(media)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
