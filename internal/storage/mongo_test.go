package storage_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/storage"
)

func startMongo(t *testing.T) string {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_CONTAINERS") != "" {
		t.Skip("skipping container test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func TestMongoPhotoStore(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	store, err := storage.NewMongoPhotoStore(ctx, uri, "photoguessr_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	_, err = store.RandomPhoto(ctx)
	assert.ErrorIs(t, err, internal.ErrNoPhotosAvailable)

	added, err := storage.SeedIfEmpty(ctx, store, []internal.Photo{
		{ImageURL: "https://img.example/opera.jpg", Location: "Sydney", Difficulty: internal.DifficultyHard, CoordX: -33.8568, CoordY: 151.2153},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	photo, err := store.RandomPhoto(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sydney", photo.Location)
	assert.Equal(t, internal.DifficultyHard, photo.Difficulty)
	assert.InDelta(t, -33.8568, photo.CoordX, 1e-9)
	assert.InDelta(t, 151.2153, photo.CoordY, 1e-9)
}
