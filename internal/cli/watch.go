package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/tail"
)

var (
	watchNoEmoji   bool
	watchTimestamp bool
	watchFormat    string
	watchResync    time.Duration
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"tail"},
	Short:   "Follow registry changes in real-time",
	Long: `Watch the device registry and print changes as they happen.

Events tracked:
  - Devices connecting for the first time
  - Check-ins (last seen updated)
  - Model or Android version changes
  - Devices removed from the registry

Format placeholders: {type} {emoji} {time} {id} {device_id} {short_id}
{model} {version} {seen}`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoEmoji, "no-emoji", false, "disable emoji output")
	watchCmd.Flags().BoolVarP(&watchTimestamp, "timestamp", "t", false, "show timestamps")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "custom format template")
	watchCmd.Flags().DurationVar(&watchResync, "resync", time.Minute, "full refetch interval (0 to rely on realtime only)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!watchNoEmoji),
		tail.WithTimestamp(watchTimestamp),
		tail.WithTemplate(watchFormat),
	)

	// Handle Ctrl+C gracefully
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := tail.NewWatcher(client, client, cfg.Backend.DevicesTable, watchResync)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	out := cmd.OutOrStdout()
	for event := range watcher.Events() {
		fmt.Fprintln(out, formatter.Format(event))
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
