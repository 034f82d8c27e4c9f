package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/wizard"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"ls"},
	Short:   "List registered devices",
	Long:    `Lists every device in the registry, most recently seen first.`,
	RunE:    runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	_, devices, err := findDevice(ctx, client, "")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		if devices == nil {
			devices = []core.Device{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Fprintln(out, "No devices registered")
		return nil
	}

	t := NewTableWriter(out, "", "MODEL", "ID", "VERSION", "LAST SEEN")
	for _, d := range devices {
		seen := "never"
		if !d.LastSeen.IsZero() {
			seen = humanize.Time(d.LastSeen)
		}
		t.Row(StatusIcon(wizard.IsRecent(d)), TruncateString(d.Name(), 24), d.ShortID()+"...", d.AndroidVersion, seen)
	}
	t.Flush()
	return nil
}
