package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/tui/styles"
)

// linesPerDevice is the height of one registry entry.
const linesPerDevice = 4

// Devices displays the connected device registry
type Devices struct {
	cursor int
	offset int
}

// NewDevices creates a new Devices component
func NewDevices() *Devices {
	return &Devices{}
}

// CursorNext moves the cursor down
func (d *Devices) CursorNext(count int) {
	if d.cursor < count-1 {
		d.cursor++
	}
}

// CursorPrev moves the cursor up
func (d *Devices) CursorPrev() {
	if d.cursor > 0 {
		d.cursor--
	}
}

// Cursor returns the cursor index
func (d *Devices) Cursor() int {
	return d.cursor
}

// Render renders the devices panel. selectedID is the registry id of the
// selected device, or empty.
func (d *Devices) Render(devices []core.Device, selectedID string, width, height int, focused bool) string {
	title := styles.PanelTitle("Connected Devices", focused)

	var content string
	if len(devices) == 0 {
		content = styles.Muted.Render("No devices registered")
	} else {
		content = d.renderDevices(devices, selectedID, width-4, height-4, focused)
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

func (d *Devices) renderDevices(devices []core.Device, selectedID string, width, maxLines int, focused bool) string {
	if d.cursor >= len(devices) {
		d.cursor = len(devices) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}

	visible := maxLines / linesPerDevice
	if visible < 1 {
		visible = 1
	}
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+visible {
		d.offset = d.cursor - visible + 1
	}

	end := d.offset + visible
	if end > len(devices) {
		end = len(devices)
	}

	blocks := make([]string, 0, end-d.offset)
	for i := d.offset; i < end; i++ {
		device := devices[i]

		selector := "  "
		if focused && i == d.cursor {
			selector = "▸ "
		}

		name := styles.Title.Render(device.Name())
		if device.ID == selectedID {
			name = styles.Highlight.Render(device.Name() + " ●")
		}

		seen := "never"
		if !device.LastSeen.IsZero() {
			seen = fmt.Sprintf("%s (%s)",
				device.LastSeen.Local().Format("2006-01-02 15:04:05"),
				humanize.Time(device.LastSeen))
		}

		block := lipgloss.JoinVertical(lipgloss.Left,
			selector+name,
			"  "+styles.Muted.Render(fmt.Sprintf("ID: %s...", device.ShortID())),
			"  "+styles.Dim.Render(fmt.Sprintf("Ver: %s  Seen: %s", device.AndroidVersion, seen)),
			"",
		)
		if device.ID == selectedID {
			block = styles.SelectedRow.Width(width).Render(block)
		}
		blocks = append(blocks, block)
	}

	if end < len(devices) {
		blocks = append(blocks, styles.Dim.Render(fmt.Sprintf("  ... and %d more", len(devices)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
