package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
)

var mediaURLs bool

var mediaCmd = &cobra.Command{
	Use:   "media <device>",
	Short: "List media captured by a device",
	Long: `Lists the newest uploads of a device (up to 100) with their public URLs.

The device can be given as its registry id, its device id or a prefix of it
(at least 4 characters), or its model name or a prefix of it.`,
	Args: cobra.ExactArgs(1),
	RunE: runMedia,
}

func init() {
	mediaCmd.Flags().BoolVarP(&mediaURLs, "urls", "u", false, "print only the URLs")
	rootCmd.AddCommand(mediaCmd)
}

func runMedia(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	device, _, err := findDevice(ctx, client, args[0])
	if err != nil {
		return err
	}

	files, err := dashboard.LoadMedia(ctx, client, device.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to list media: %w", err)
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		if files == nil {
			files = []core.MediaFile{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}

	if mediaURLs {
		for _, f := range files {
			fmt.Fprintln(out, f.PublicURL)
		}
		return nil
	}

	if len(files) == 0 {
		fmt.Fprintf(out, "No media for %s in bucket %s\n", device.Name(), client.Bucket())
		return nil
	}

	t := NewTableWriter(out, "NAME", "CAPTURED", "URL")
	for _, f := range files {
		captured := ""
		if !f.CreatedAt.IsZero() {
			captured = humanize.Time(f.CreatedAt)
		}
		t.Row(f.Caption(), captured, f.PublicURL)
	}
	t.Flush()
	return nil
}
