// Package mongo provides the MongoDB-backed activity feed. The feed is a
// read-model projection of dispatched notifications, kept apart from the
// PostgreSQL ledger so feed load never contends with settlement writes.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/the-giftist/funding-ledger/internal/domain/notification"
)

const (
	// ActivityCollectionName is the name of the activity feed collection
	ActivityCollectionName = "activity_feed"
)

// ActivityRepository implements notification.Feed for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity feed repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) notification.Feed {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Append upserts the notification keyed by its ID. The outbox poller may
// retry a batch after a partial failure; the upsert keeps the feed free of
// duplicate entries without a separate existence check.
func (r *ActivityRepository) Append(ctx context.Context, n *notification.Notification) error {
	collection := r.db.Collection(ActivityCollectionName)

	filter := bson.M{"id": n.ID}
	update := bson.M{"$setOnInsert": n}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to append notification to activity feed",
			"notification_id", n.ID.String(),
			"error", err)
		return fmt.Errorf("failed to append notification to activity feed: %w", err)
	}

	return nil
}

// ListByRecipient returns the recipient's feed entries, newest first
func (r *ActivityRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]*notification.Notification, error) {
	collection := r.db.Collection(ActivityCollectionName)

	filter := bson.M{"recipient_id": recipientID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list activity feed",
			"recipient_id", recipientID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list activity feed: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []*notification.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		r.logger.Error("Failed to decode activity feed entries",
			"recipient_id", recipientID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode activity feed entries: %w", err)
	}

	return notifications, nil
}
