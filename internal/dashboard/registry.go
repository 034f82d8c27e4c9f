package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/tessro/lookout/internal/core"
	"github.com/tessro/lookout/internal/errors"
)

// FetchDevices lists the registry, most recently seen first.
func FetchDevices(ctx context.Context, b core.Backend, table string) ([]core.Device, error) {
	if table == "" {
		table = core.TableDevices
	}

	var devices []core.Device
	if err := b.QueryAll(ctx, table, "last_seen", core.Descending, &devices); err != nil {
		log.Error().Err(err).Str("table", table).Msg("fetch devices")
		return nil, err
	}
	return devices, nil
}

// FindDevice resolves a device by registry id, external id, external id
// prefix, exact model name, then model prefix in any case. The first
// matcher with a hit wins.
func FindDevice(devices []core.Device, query string) (core.Device, error) {
	matchers := []func(core.Device) bool{
		func(d core.Device) bool { return d.ID == query },
		func(d core.Device) bool { return d.DeviceID == query },
		func(d core.Device) bool { return len(query) >= 4 && strings.HasPrefix(d.DeviceID, query) },
		func(d core.Device) bool { return d.DeviceModel == query },
		func(d core.Device) bool {
			return len(query) >= 4 && strings.HasPrefix(strings.ToLower(d.DeviceModel), strings.ToLower(query))
		},
	}

	for _, match := range matchers {
		if d, ok := lo.Find(devices, match); ok {
			return d, nil
		}
	}
	return core.Device{}, fmt.Errorf("%w: %s", errors.ErrDeviceNotFound, query)
}
