package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tessro/lookout/internal/backend"
	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/dashboard"
	"github.com/tessro/lookout/internal/errors"
	"github.com/tessro/lookout/internal/journal"
)

// newBackend builds a client from the loaded configuration.
func newBackend() (*backend.Client, error) {
	if !cfg.IsConfigured() {
		return nil, errors.ErrNotConfigured
	}
	return backend.New(backend.Options{
		URL:               cfg.Backend.URL,
		Key:               cfg.Backend.Key,
		Bucket:            cfg.Backend.Bucket,
		PublicURLTemplate: cfg.Backend.PublicURLTemplate,
		Timeout:           time.Duration(cfg.Backend.Timeout) * time.Second,
	})
}

// openJournal opens the command journal. It returns nil when the journal is
// disabled.
func openJournal() (*journal.Store, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path)
}

// journalOrNil opens the journal for commands that work without one. A
// failure is logged and the command carries on unjournaled.
func journalOrNil() (*journal.Store, dashboard.Journal) {
	store, err := openJournal()
	if err != nil {
		log.Warn().Err(err).Msg("command journal unavailable")
		return nil, nil
	}
	if store == nil {
		return nil, nil
	}
	return store, store
}

func requestTimeout() time.Duration {
	if cfg.Backend.Timeout > 0 {
		return time.Duration(cfg.Backend.Timeout) * time.Second
	}
	return 30 * time.Second
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout())
}

// findDevice fetches the registry and resolves query against it.
func findDevice(ctx context.Context, b core.Backend, query string) (core.Device, []core.Device, error) {
	devices, err := dashboard.FetchDevices(ctx, b, cfg.Backend.DevicesTable)
	if err != nil {
		return core.Device{}, nil, fmt.Errorf("failed to get devices: %w", err)
	}
	if query == "" {
		return core.Device{}, devices, nil
	}
	d, err := dashboard.FindDevice(devices, query)
	return d, devices, err
}

// normalizeCommand upper-cases a recognized label typed in any case. Other
// labels pass through unchanged.
func normalizeCommand(label string) core.CommandType {
	upper := core.CommandType(strings.ToUpper(label))
	if upper.IsKnown() {
		return upper
	}
	return core.CommandType(label)
}
