package dashboard

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tessro/lookout/internal/core"
)

// Journal records commands issued from this machine.
type Journal interface {
	Record(ctx context.Context, device core.Device, cmd core.Command, sendErr error) error
}

// Dispatcher writes command records to the backend.
type Dispatcher struct {
	backend core.Backend
	table   string
	journal Journal
}

// NewDispatcher creates a dispatcher writing to table. j may be nil.
func NewDispatcher(b core.Backend, table string, j Journal) *Dispatcher {
	if table == "" {
		table = core.TableCommands
	}
	return &Dispatcher{backend: b, table: table, journal: j}
}

// Send writes exactly one command record addressed to device. There is no
// retry; the backend error is returned as is.
func (d *Dispatcher) Send(ctx context.Context, device core.Device, label core.CommandType) error {
	cmd := core.Command{DeviceUUID: device.ID, CommandType: label}
	return d.Write(ctx, device, cmd)
}

// Write sends a prepared command record.
func (d *Dispatcher) Write(ctx context.Context, device core.Device, cmd core.Command) error {
	if !cmd.CommandType.IsKnown() {
		log.Warn().Str("command", string(cmd.CommandType)).Msg("sending unrecognized command label")
	}

	err := d.backend.Insert(ctx, d.table, cmd)
	if err != nil {
		log.Error().Err(err).Str("device", cmd.DeviceUUID).Str("command", string(cmd.CommandType)).Msg("send command")
	} else {
		log.Info().Str("device", cmd.DeviceUUID).Str("command", string(cmd.CommandType)).Msg("command sent")
	}

	if d.journal != nil {
		if jerr := d.journal.Record(ctx, device, cmd, err); jerr != nil {
			log.Warn().Err(jerr).Msg("journal command")
		}
	}
	return err
}
