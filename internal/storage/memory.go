package storage

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/scythe504/photoguessr-backend/internal"
)

// MemoryPhotoStore keeps the photo pool in process, seeded from CSV.
type MemoryPhotoStore struct {
	mu     sync.RWMutex
	photos []internal.Photo
	pick   func(n int) int
}

func NewMemoryPhotoStore(photos []internal.Photo) *MemoryPhotoStore {
	return &MemoryPhotoStore{
		photos: append([]internal.Photo(nil), photos...),
		pick:   rand.IntN,
	}
}

func (s *MemoryPhotoStore) RandomPhoto(ctx context.Context) (internal.Photo, error) {
	if err := ctx.Err(); err != nil {
		return internal.Photo{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.photos) == 0 {
		return internal.Photo{}, internal.ErrNoPhotosAvailable
	}
	return s.photos[s.pick(len(s.photos))], nil
}

func (s *MemoryPhotoStore) AddPhoto(_ context.Context, photo internal.Photo) error {
	if err := photo.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.photos = append(s.photos, photo)
	s.mu.Unlock()
	return nil
}

func (s *MemoryPhotoStore) Count(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos), nil
}
