package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#10B981") // Green
	Accent    = lipgloss.Color("#F59E0B") // Amber

	Success = lipgloss.Color("#10B981")
	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
	Info    = lipgloss.Color("#3B82F6")

	Border    = lipgloss.Color("#4B5563")
	Text      = lipgloss.Color("#F9FAFB")
	TextMuted = lipgloss.Color("#9CA3AF")
	TextDim   = lipgloss.Color("#6B7280")
	Selected  = lipgloss.Color("#1E3A8A")
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Streaming = lipgloss.NewStyle().
		Bold(true).
		Foreground(Error)

	Ok = lipgloss.NewStyle().
		Foreground(Success)

	Failed = lipgloss.NewStyle().
		Foreground(Error)

	SelectedRow = lipgloss.NewStyle().
		Background(Selected)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)

	AlertBorder = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Error).
		Padding(1, 3)
)

// Button styles
var (
	Button = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(Text).
		Background(lipgloss.Color("#374151"))

	ActiveButton = lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(Text).
		Background(Primary)

	StopButton = lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(Text).
		Background(lipgloss.Color("#991B1B"))
)

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ApplyTheme adjusts the palette for light terminals. "auto" asks lipgloss
// whether the background is dark.
func ApplyTheme(theme string) {
	light := theme == "light" || (theme == "auto" && !lipgloss.HasDarkBackground())
	if !light {
		return
	}
	Text = lipgloss.Color("#111827")
	Selected = lipgloss.Color("#DBEAFE")
	Title = Title.Foreground(Text)
	SelectedRow = SelectedRow.Background(Selected)
	Button = Button.Foreground(lipgloss.Color("#F9FAFB"))
}

// Repeat repeats a string n times
func Repeat(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
