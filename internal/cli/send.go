package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
	"github.com/tessro/lookout/internal/errors"
	"github.com/tessro/lookout/internal/wizard"
)

var sendNoInteractive bool

var sendCmd = &cobra.Command{
	Use:   "send [device] [command]",
	Short: "Send a command to a device",
	Long: `Writes one command record addressed to a device.

Commands:
  CAM_FRONT            Capture with the front camera
  CAM_BACK             Capture with the back camera
  LOCATION             Report location
  SCREEN_STREAM_START  Start streaming the screen
  SCREEN_STREAM_STOP   Stop streaming the screen

Other labels are written as given. When the device or command is missing
and the terminal is interactive, a picker is shown.

Examples:
  lookout send "Pixel 7" LOCATION
  lookout send abc123 cam_front
  lookout send`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVar(&sendNoInteractive, "no-interactive", false, "never show pickers")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	device, devices, err := findDevice(ctx, client, query)
	if err != nil {
		return err
	}

	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!sendNoInteractive && !JSONOutput())
	interactive.SetDevices(devices)

	if wizard.NeedsDevice(args, devices) {
		picked, err := interactive.PromptDevice()
		if err != nil {
			return err
		}
		if picked == nil {
			return errors.ErrNoDeviceSelected
		}
		device = *picked
	} else if len(args) == 0 {
		device = *wizard.GetSoleDevice(devices)
	}

	var label core.CommandType
	if len(args) > 1 {
		label = normalizeCommand(args[1])
	} else {
		label, err = interactive.PromptCommand(device)
		if err != nil {
			return err
		}
		if label == "" {
			return fmt.Errorf("command required: one of CAM_FRONT, CAM_BACK, LOCATION, SCREEN_STREAM_START, SCREEN_STREAM_STOP")
		}
	}

	if !label.IsKnown() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a recognized command; sending as given\n", label)
	}

	store, j := journalOrNil()
	if store != nil {
		defer store.Close()
	}

	if err := dashboard.NewDispatcher(client, cfg.Backend.CommandsTable, j).Send(ctx, device, label); err != nil {
		return fmt.Errorf("failed to send %s: %w", label, err)
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return json.NewEncoder(out).Encode(map[string]string{
			"status":       "sent",
			"device_uuid":  device.ID,
			"command_type": string(label),
		})
	}
	fmt.Fprintf(out, "Sent %s to %s\n", label.Label(), device.Name())
	return nil
}
