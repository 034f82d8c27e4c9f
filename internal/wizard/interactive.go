package wizard

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tessro/lookout/internal/core"
)

// recentWindow is how long after its last check-in a device counts as
// recently seen.
const recentWindow = 5 * time.Minute

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
	devices []core.Device
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetDevices sets the available devices for the device picker.
func (i *Interactive) SetDevices(devices []core.Device) {
	i.devices = devices
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptDevice launches the device picker if interactive mode is available.
// Returns the selected device, or nil if cancelled or not interactive.
func (i *Interactive) PromptDevice() (*core.Device, error) {
	if !i.CanInteract() || len(i.devices) == 0 {
		return nil, nil
	}
	return RunDevicePicker(i.devices)
}

// PromptCommand asks which command to send to device. Returns an empty label
// when not interactive.
func (i *Interactive) PromptCommand(device core.Device) (core.CommandType, error) {
	if !i.CanInteract() {
		return "", nil
	}

	var selected string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Send command to %s", device.Name())).
				Options(CommandOptions()...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return core.CommandType(selected), nil
}

// CommandOptions builds picker options for the recognized commands.
func CommandOptions() []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(core.KnownCommands))
	for _, c := range core.KnownCommands {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", c.Label(), c), string(c)))
	}
	return options
}

// NeedsDevice returns true if a device argument is required but missing.
func NeedsDevice(args []string, devices []core.Device) bool {
	if len(args) > 0 {
		return false
	}
	// A lone registered device needs no prompt
	return len(devices) != 1
}

// GetSoleDevice returns the only registered device, if there is exactly one.
func GetSoleDevice(devices []core.Device) *core.Device {
	if len(devices) == 1 {
		return &devices[0]
	}
	return nil
}

// IsRecent reports whether the device checked in within the last five
// minutes.
func IsRecent(d core.Device) bool {
	return !d.LastSeen.IsZero() && time.Since(d.LastSeen) < recentWindow
}
