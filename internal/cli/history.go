package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/journal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [device]",
	Short: "Show commands sent from this machine",
	Long: `Lists commands recorded in the local journal, newest first.

When a device is given, only its commands are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	if store == nil {
		return fmt.Errorf("command journal is disabled (journal.enabled = false)")
	}
	defer store.Close()

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	deviceUUID := ""
	if len(args) > 0 {
		deviceUUID = args[0]
		if cfg.IsConfigured() {
			client, err := newBackend()
			if err != nil {
				return err
			}
			device, _, err := findDevice(ctx, client, args[0])
			if err != nil {
				return err
			}
			deviceUUID = device.ID
		}
	}

	entries, err := store.Recent(ctx, deviceUUID, historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		if entries == nil {
			entries = []journal.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No commands sent yet")
		return nil
	}

	t := NewTableWriter(out, "", "COMMAND", "DEVICE", "SENT", "ERROR")
	for _, e := range entries {
		t.Row(
			StatusIcon(e.Status == journal.StatusSent),
			string(e.CommandType),
			TruncateString(deviceLabel(e), 24),
			humanize.Time(e.CreatedAt),
			TruncateString(e.Error, 48),
		)
	}
	t.Flush()
	return nil
}

func deviceLabel(e journal.Entry) string {
	if e.DeviceModel != "" {
		return e.DeviceModel
	}
	if e.DeviceID != "" {
		return e.DeviceID
	}
	return e.DeviceUUID
}
