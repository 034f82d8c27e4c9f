package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/lookout/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard operations as a JSON API",
	Long: `Starts an HTTP server exposing:

  GET  /health
  GET  /api/devices
  GET  /api/devices/:id/media
  POST /api/devices/:id/commands   {"command_type": "LOCATION"}`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := newBackend()
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := server.Options{
		Backend:        client,
		DevicesTable:   cfg.Backend.DevicesTable,
		CommandsTable:  cfg.Backend.CommandsTable,
		Timeout:        requestTimeout(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	store, j := journalOrNil()
	if store != nil {
		defer store.Close()
		opts.Journal = j
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.New(opts).Run(ctx, addr)
}
