package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/tui"
)

var uiInterval int

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Connected Devices - the registry, most recently seen first
  • Control - command buttons for the selected device
  • Captured Media - uploads of the selected device
  • Command History - commands sent from this machine

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Tab          Switch panel
  Enter        Select device / send command / open media
  1-5          Front Cam, Back Cam, Location, Start Stream, Stop Stream
  r            Refresh`,
	Annotations: map[string]string{"logging": fileLogging},
	RunE:        runUI,
}

func init() {
	uiCmd.Flags().IntVar(&uiInterval, "interval", 0, "stream refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	interval := cfg.TUI.StreamInterval
	if uiInterval > 0 {
		interval = uiInterval
	}

	opts := tui.Options{
		Backend:        client,
		Notifier:       client,
		DevicesTable:   cfg.Backend.DevicesTable,
		CommandsTable:  cfg.Backend.CommandsTable,
		StreamInterval: time.Duration(interval) * time.Millisecond,
		RequestTimeout: time.Duration(cfg.TUI.RequestTimeout) * time.Second,
		Theme:          cfg.TUI.Theme,
	}

	store, _ := journalOrNil()
	if store != nil {
		defer store.Close()
		opts.Journal = store
	}

	return tui.Run(opts)
}
