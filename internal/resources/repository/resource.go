package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	resourceserrors "vintrek/internal/resources/errors"
	"vintrek/pkg/config"
	mongotx "vintrek/pkg/db/mongo"
	"vintrek/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Resources"
)

type ResourceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
	FindAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, error)
	Count(ctx context.Context, filter model.ResourceFilter) (int64, error)
	Upsert(ctx context.Context, r *model.Resource) error
}

type mongoResourceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResourceRepository(cfg *config.Config) ResourceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoResourceRepository) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	var res model.Resource
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", resourceserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}
	return &res, nil
}

func (r *mongoResourceRepository) FindAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset).
		SetSort(bson.D{{Key: "kind", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer cursor.Close(ctx)

	resources := []*model.Resource{}
	if err = cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}
	return resources, nil
}

func (r *mongoResourceRepository) Count(ctx context.Context, filter model.ResourceFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count resources: %w", err)
	}
	return count, nil
}

// Upsert replaces the resource document by id, creating it when missing.
func (r *mongoResourceRepository) Upsert(ctx context.Context, res *model.Resource) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": res.ID}, res, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert resource: %w", err)
	}
	return nil
}

func buildFilter(f model.ResourceFilter) bson.M {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Category != "" {
		filter["rental_item.category"] = f.Category
	}
	if f.ActiveOnly {
		filter["active"] = true
	}
	return filter
}
