package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scythe504/photoguessr-backend/internal"
)

// PostgresPhotoStore reads photos from the photos table created by the
// migrations package.
type PostgresPhotoStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPhotoStore(ctx context.Context, connString string) (*PostgresPhotoStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres pool: %w", internal.ErrInternal, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", internal.ErrInternal, err)
	}
	return &PostgresPhotoStore{pool: pool}, nil
}

func (s *PostgresPhotoStore) RandomPhoto(ctx context.Context) (internal.Photo, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT image_url, location, difficulty, coord_x, coord_y FROM photos ORDER BY RANDOM() LIMIT 1")

	var (
		photo      internal.Photo
		difficulty string
	)
	err := row.Scan(&photo.ImageURL, &photo.Location, &difficulty, &photo.CoordX, &photo.CoordY)
	if err != nil {
		return internal.Photo{}, classify(err)
	}
	photo.Difficulty = internal.ParseDifficulty(difficulty)
	return photo, nil
}

func (s *PostgresPhotoStore) AddPhoto(ctx context.Context, photo internal.Photo) error {
	if err := photo.Validate(); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO photos(image_url, location, difficulty, coord_x, coord_y) VALUES($1, $2, $3, $4, $5)",
		photo.ImageURL, photo.Location, string(photo.Difficulty), photo.CoordX, photo.CoordY)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (s *PostgresPhotoStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM photos").Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (s *PostgresPhotoStore) Close() {
	s.pool.Close()
}

func classify(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return internal.ErrNoPhotosAvailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", internal.ErrInternal, err)
	}
}
