package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/tui/styles"
)

// DeviceModel is a bubbletea picker over the device registry. Typing narrows
// the list by model or device id.
type DeviceModel struct {
	devices  []core.Device
	visible  []int
	filter   string
	cursor   int
	selected *core.Device
}

// NewDeviceModel creates a picker over devices in registry order.
func NewDeviceModel(devices []core.Device) DeviceModel {
	m := DeviceModel{devices: devices}
	m.applyFilter()
	return m
}

func (m *DeviceModel) applyFilter() {
	q := strings.ToLower(m.filter)
	visible := make([]int, 0, len(m.devices))
	for i, d := range m.devices {
		if q == "" ||
			strings.Contains(strings.ToLower(d.DeviceModel), q) ||
			strings.HasPrefix(strings.ToLower(d.DeviceID), q) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// Init initializes the model.
func (m DeviceModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DeviceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch km.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		if m.filter != "" {
			m.filter = ""
			m.applyFilter()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEnter:
		if len(m.visible) > 0 {
			m.selected = &m.devices[m.visible[m.cursor]]
			return m, tea.Quit
		}
	case tea.KeyUp, tea.KeyCtrlP:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown, tea.KeyCtrlN:
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(km.Runes)
		m.cursor = 0
		m.applyFilter()
	}
	return m, nil
}

// View renders the model.
func (m DeviceModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Select Device"))
	if m.filter != "" {
		b.WriteString("  " + styles.Muted.Render("filter: "+m.filter))
	}
	b.WriteString("\n\n")

	switch {
	case len(m.devices) == 0:
		b.WriteString(styles.Dim.Render("No devices registered"))
		b.WriteString("\n\n")
		b.WriteString(styles.Muted.Render("Devices appear here once they check in with the backend."))
		b.WriteString("\n")
	case len(m.visible) == 0:
		b.WriteString(styles.Dim.Render("No devices match"))
		b.WriteString("\n")
	default:
		for row, idx := range m.visible {
			b.WriteString(m.renderRow(m.devices[idx], row == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("type to filter • ↑/↓ navigate • enter select • esc clear/quit"))
	return b.String()
}

func (m DeviceModel) renderRow(d core.Device, current bool) string {
	dot := styles.Dim.Render("○")
	if IsRecent(d) {
		dot = styles.Ok.Render("●")
	}

	info := fmt.Sprintf("(%s..., Android %s)", d.ShortID(), d.AndroidVersion)
	if !d.LastSeen.IsZero() {
		info += " seen " + humanize.Time(d.LastSeen)
	}

	line := fmt.Sprintf("%s %s %s", dot, d.Name(), styles.Muted.Render(info))
	if current {
		return styles.SelectedRow.Render("▸ " + line)
	}
	return "  " + line
}

// Selected returns the picked device, or nil if the picker was dismissed.
func (m DeviceModel) Selected() *core.Device {
	return m.selected
}

// RunDevicePicker runs the picker and returns the chosen device.
func RunDevicePicker(devices []core.Device) (*core.Device, error) {
	p := tea.NewProgram(NewDeviceModel(devices), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(DeviceModel).Selected(), nil
}
