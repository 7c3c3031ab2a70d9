package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availabilityerrors "vintrek/internal/availability/errors"
	"vintrek/pkg/config"
	mongotx "vintrek/pkg/db/mongo"
	"vintrek/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Availability_windows"
)

// WindowQuery selects windows for listing. Zero fields do not filter.
type WindowQuery struct {
	Resource  *model.ResourceRef
	StartDate time.Time
	EndDate   time.Time
	Status    model.WindowStatus
	Limit     int
	Offset    int64
}

type WindowRepository interface {
	// QueryWindows returns every window of ref that intersects [start, end).
	QueryWindows(ctx context.Context, ref model.ResourceRef, start, end time.Time) ([]*model.AvailabilityWindow, error)

	FindByID(ctx context.Context, id string) (*model.AvailabilityWindow, error)
	FindAll(ctx context.Context, q WindowQuery) ([]*model.AvailabilityWindow, error)
	Count(ctx context.Context, q WindowQuery) (int64, error)
	Create(ctx context.Context, w *model.AvailabilityWindow) error
	Update(ctx context.Context, w *model.AvailabilityWindow) error
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoWindowRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoWindowRepository(cfg *config.Config) WindowRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWindowRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWindowRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// OverlapFilter matches windows of ref intersecting the half-open [start, end).
func OverlapFilter(ref model.ResourceRef, start, end time.Time) bson.M {
	return bson.M{
		"resource.kind": ref.Kind,
		"resource.id":   ref.ID,
		"start_date":    bson.M{"$lt": end},
		"end_date":      bson.M{"$gt": start},
	}
}

func (r *mongoWindowRepository) QueryWindows(ctx context.Context, ref model.ResourceRef, start, end time.Time) ([]*model.AvailabilityWindow, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cursor, err := r.collection.Find(ctx, OverlapFilter(ref, start, end), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability windows: %w", err)
	}
	defer cursor.Close(ctx)

	windows := []*model.AvailabilityWindow{}
	if err = cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode availability windows: %w", err)
	}
	return windows, nil
}

func (r *mongoWindowRepository) FindByID(ctx context.Context, id string) (*model.AvailabilityWindow, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	var w model.AvailabilityWindow
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find availability window: %w", err)
	}
	return &w, nil
}

func (r *mongoWindowRepository) FindAll(ctx context.Context, q WindowQuery) ([]*model.AvailabilityWindow, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(q.Offset).
		SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildQuery(q), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability windows: %w", err)
	}
	defer cursor.Close(ctx)

	windows := []*model.AvailabilityWindow{}
	if err = cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode availability windows: %w", err)
	}
	return windows, nil
}

func (r *mongoWindowRepository) Count(ctx context.Context, q WindowQuery) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildQuery(q))
	if err != nil {
		return 0, fmt.Errorf("failed to count availability windows: %w", err)
	}
	return count, nil
}

func buildQuery(q WindowQuery) bson.M {
	filter := bson.M{}
	if q.Resource != nil {
		filter["resource.kind"] = q.Resource.Kind
		filter["resource.id"] = q.Resource.ID
	}
	if !q.EndDate.IsZero() {
		filter["start_date"] = bson.M{"$lt": q.EndDate}
	}
	if !q.StartDate.IsZero() {
		filter["end_date"] = bson.M{"$gt": q.StartDate}
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	return filter
}

func (r *mongoWindowRepository) Create(ctx context.Context, w *model.AvailabilityWindow) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	w.ID = ""
	w.CreatedAt = now
	w.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("failed to create availability window: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		w.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWindowRepository) Update(ctx context.Context, w *model.AvailabilityWindow) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(w.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, w.ID)
	}

	w.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"start_date": w.StartDate,
			"end_date":   w.EndDate,
			"status":     w.Status,
			"notes":      w.Notes,
			"updated_at": w.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update availability window: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, w.ID)
	}
	return nil
}

func (r *mongoWindowRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete availability window: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", availabilityerrors.ErrNotFound, id)
	}
	return nil
}
