package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/photoguessr-backend/internal"
)

var samplePhotos = []internal.Photo{
	{ImageURL: "https://img.example/eiffel.jpg", Location: "Paris", Difficulty: internal.DifficultyEasy, CoordX: 48.8584, CoordY: 2.2945},
	{ImageURL: "https://img.example/opera.jpg", Location: "Sydney", Difficulty: internal.DifficultyMedium, CoordX: -33.8568, CoordY: 151.2153},
}

func TestMemoryPhotoStoreEmpty(t *testing.T) {
	store := NewMemoryPhotoStore(nil)

	_, err := store.RandomPhoto(context.Background())
	assert.ErrorIs(t, err, internal.ErrNoPhotosAvailable)
}

func TestMemoryPhotoStoreRandomPhoto(t *testing.T) {
	store := NewMemoryPhotoStore(samplePhotos)
	store.pick = func(n int) int { return n - 1 }

	photo, err := store.RandomPhoto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, samplePhotos[1], photo)
}

func TestMemoryPhotoStoreCancelledContext(t *testing.T) {
	store := NewMemoryPhotoStore(samplePhotos)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.RandomPhoto(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPhotoStore(nil)

	added, err := SeedIfEmpty(ctx, store, samplePhotos)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = SeedIfEmpty(ctx, store, samplePhotos)
	require.NoError(t, err)
	assert.Zero(t, added)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAddPhotoRejectsInvalid(t *testing.T) {
	store := NewMemoryPhotoStore(nil)

	err := store.AddPhoto(context.Background(), internal.Photo{ImageURL: "x.jpg", CoordX: 120})
	assert.ErrorIs(t, err, internal.ErrInvalidGuess)

	err = store.AddPhoto(context.Background(), internal.Photo{CoordX: 10})
	assert.Error(t, err)
}
