package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/storage"
	"github.com/scythe504/photoguessr-backend/internal/storage/migrations"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_CONTAINERS") != "" {
		t.Skip("skipping container test")
	}

	ctx := context.Background()
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = postgresContainer.Terminate(context.Background())
	})

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migrations.Migrate(connString))
	return connString
}

func TestPostgresPhotoStore(t *testing.T) {
	connString := startPostgres(t)
	ctx := context.Background()

	store, err := storage.NewPostgresPhotoStore(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	t.Run("RandomPhoto_Empty", func(t *testing.T) {
		_, err := store.RandomPhoto(ctx)
		assert.ErrorIs(t, err, internal.ErrNoPhotosAvailable)
	})

	t.Run("AddPhoto", func(t *testing.T) {
		err := store.AddPhoto(ctx, internal.Photo{
			ImageURL:   "https://img.example/eiffel.jpg",
			Location:   "Paris",
			Difficulty: internal.DifficultyEasy,
			CoordX:     48.8584,
			CoordY:     2.2945,
		})
		require.NoError(t, err)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("RandomPhoto", func(t *testing.T) {
		photo, err := store.RandomPhoto(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Paris", photo.Location)
		assert.Equal(t, internal.DifficultyEasy, photo.Difficulty)
		assert.InDelta(t, 48.8584, photo.Lat(), 1e-9)
		assert.InDelta(t, 2.2945, photo.Lng(), 1e-9)
	})

	t.Run("RandomPhoto_Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.RandomPhoto(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("SeedIfEmpty_Skips", func(t *testing.T) {
		added, err := storage.SeedIfEmpty(ctx, store, []internal.Photo{{ImageURL: "x.jpg", CoordX: 1, CoordY: 1}})
		require.NoError(t, err)
		assert.Zero(t, added)
	})
}
