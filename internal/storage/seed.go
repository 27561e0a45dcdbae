package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// Seedable is a photo store that can be filled from a CSV pool.
type Seedable interface {
	AddPhoto(ctx context.Context, photo internal.Photo) error
	Count(ctx context.Context) (int, error)
}

// SeedIfEmpty inserts photos into an empty store and returns how many it
// added. A store that already holds photos is left untouched.
func SeedIfEmpty(ctx context.Context, store Seedable, photos []internal.Photo) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debug().Int("photos", n).Msg("[SeedIfEmpty] store already seeded")
		return 0, nil
	}

	for i, photo := range photos {
		if err := store.AddPhoto(ctx, photo); err != nil {
			return i, fmt.Errorf("seed photo %s: %w", photo.ImageURL, err)
		}
	}
	log.Info().Int("photos", len(photos)).Msg("[SeedIfEmpty] photo store seeded")
	return len(photos), nil
}
