package dashboard

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/tessro/lookout/internal/core"
)

// MediaLimit caps a single gallery listing.
const MediaLimit = 100

// LoadMedia lists the newest uploads of a device and resolves their public
// URLs.
func LoadMedia(ctx context.Context, b core.Backend, deviceID string) ([]core.MediaFile, error) {
	objects, err := b.ListObjects(ctx, deviceID, core.ListOptions{
		Limit:  MediaLimit,
		Offset: 0,
		SortBy: core.SortBy{Column: "created_at", Order: core.Descending},
	})
	if err != nil {
		log.Error().Err(err).Str("prefix", deviceID).Msg("list media")
		return nil, err
	}

	return lo.Map(objects, func(obj core.StorageObject, _ int) core.MediaFile {
		return core.MediaFile{
			StorageObject: obj,
			PublicURL:     b.PublicURL(deviceID, obj.Name),
		}
	}), nil
}
