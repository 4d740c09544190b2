package repository

import (
	"context"
	"errors"
	"fmt"

	"villaops/pkg/config"
	"villaops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Properties"

var ErrNotFound = errors.New("property not found")

type Lookup interface {
	GetProperty(ctx context.Context, id string) (*model.Property, error)
}

type mongoLookup struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLookup(cfg *config.Config) Lookup {
	return &mongoLookup{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoLookup) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filter = bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}

	var property model.Property
	if err := r.collection.FindOne(ctx, filter).Decode(&property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &property, nil
}

// StaticLookup serves properties from a map.
type StaticLookup map[string]model.Property

func (l StaticLookup) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	p, ok := l[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
