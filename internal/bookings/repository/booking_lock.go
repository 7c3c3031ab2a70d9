package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "vintrek/internal/bookings/errors"
	"vintrek/pkg/config"
	mongotx "vintrek/pkg/db/mongo"
	"vintrek/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository stores advisory locks. A TTL index on expires_at
// removes locks whose holder died.
type BookingLockRepository interface {
	Acquire(ctx context.Context, lock *model.BookingLock) error
	Release(ctx context.Context, id, owner string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

// Acquire inserts lock. An unexpired lock with the same id yields ErrLockHeld;
// an expired one the TTL monitor has not collected yet is taken over.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock.CreatedAt = now

	_, err := r.collection.InsertOne(ctx, lock)
	if err == nil {
		return nil
	}
	if !mongotx.IsDuplicateKey(err) {
		return fmt.Errorf("failed to acquire booking lock: %w", err)
	}

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}}, lock)
	if err != nil {
		return fmt.Errorf("failed to take over booking lock: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, lock.ID)
	}
	return nil
}

// Release deletes the lock only if owner still holds it.
func (r *mongoBookingLockRepository) Release(ctx context.Context, id, owner string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.BackendTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner": owner}); err != nil {
		return fmt.Errorf("failed to release booking lock: %w", err)
	}
	return nil
}
