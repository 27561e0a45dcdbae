package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scythe504/photoguessr-backend/internal"
)

const photosCollection = "photos"

type photoDocument struct {
	ImageURL   string  `bson:"imageUrl"`
	Location   string  `bson:"location"`
	Difficulty string  `bson:"difficulty"`
	CoordX     float64 `bson:"coordX"`
	CoordY     float64 `bson:"coordY"`
}

// MongoPhotoStore reads photos from a collection shaped like
// {imageUrl, location, difficulty, coordX, coordY}.
type MongoPhotoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoPhotoStore(ctx context.Context, uri, database string) (*MongoPhotoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %w", internal.ErrInternal, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongo: %w", internal.ErrInternal, err)
	}
	return &MongoPhotoStore{
		client:     client,
		collection: client.Database(database).Collection(photosCollection),
	}, nil
}

func (s *MongoPhotoStore) RandomPhoto(ctx context.Context) (internal.Photo, error) {
	cursor, err := s.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	})
	if err != nil {
		return internal.Photo{}, classifyMongo(err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return internal.Photo{}, classifyMongo(err)
		}
		return internal.Photo{}, internal.ErrNoPhotosAvailable
	}

	var doc photoDocument
	if err := cursor.Decode(&doc); err != nil {
		return internal.Photo{}, classifyMongo(err)
	}
	return internal.Photo{
		ImageURL:   doc.ImageURL,
		Location:   doc.Location,
		Difficulty: internal.ParseDifficulty(doc.Difficulty),
		CoordX:     doc.CoordX,
		CoordY:     doc.CoordY,
	}, nil
}

func (s *MongoPhotoStore) AddPhoto(ctx context.Context, photo internal.Photo) error {
	if err := photo.Validate(); err != nil {
		return err
	}
	_, err := s.collection.InsertOne(ctx, photoDocument{
		ImageURL:   photo.ImageURL,
		Location:   photo.Location,
		Difficulty: string(photo.Difficulty),
		CoordX:     photo.CoordX,
		CoordY:     photo.CoordY,
	})
	if err != nil {
		return classifyMongo(err)
	}
	return nil
}

func (s *MongoPhotoStore) Count(ctx context.Context) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, classifyMongo(err)
	}
	return int(n), nil
}

func (s *MongoPhotoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func classifyMongo(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return internal.ErrNoPhotosAvailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", internal.ErrInternal, err)
	}
}
