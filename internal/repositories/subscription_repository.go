package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/videotube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository defines the interface for subscription edge operations
type SubscriptionRepository interface {
	FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, sub *models.Subscription) error
	DeleteSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error
	IsSubscribed(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriber primitive.ObjectID) (int64, error)
	ListSubscriberIDs(ctx context.Context, channel primitive.ObjectID) ([]primitive.ObjectID, error)
	ListChannelIDs(ctx context.Context, subscriber primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoSubscriptionRepository implements SubscriptionRepository for MongoDB
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new MongoSubscriptionRepository
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{collection: db.Collection("subscriptions")}
}

// FindSubscription retrieves the edge for a (subscriber, channel) pair
func (r *MongoSubscriptionRepository) FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, subFilter(subscriber, channel)).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("subscription to %s: %w", channel.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription creates a subscription edge. A concurrent duplicate is
// rejected by the unique index and reported as ErrConflict.
func (r *MongoSubscriptionRepository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, sub)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("already subscribed: %w", ErrConflict)
	}
	return err
}

// DeleteSubscription removes the edge for a (subscriber, channel) pair.
// Deleting an absent edge is a no-op.
func (r *MongoSubscriptionRepository) DeleteSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, subFilter(subscriber, channel))
	return err
}

// IsSubscribed reports whether the subscriber -> channel edge exists
func (r *MongoSubscriptionRepository) IsSubscribed(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, subFilter(subscriber, channel))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountSubscribers counts the subscribers of a channel
func (r *MongoSubscriptionRepository) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"channel": channel})
}

// CountSubscribedTo counts the channels a user subscribes to
func (r *MongoSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriber primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"subscriber": subscriber})
}

// ListSubscriberIDs returns the user IDs subscribed to a channel
func (r *MongoSubscriptionRepository) ListSubscriberIDs(ctx context.Context, channel primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.listEdgeIDs(ctx, bson.M{"channel": channel}, func(s models.Subscription) primitive.ObjectID {
		return s.Subscriber
	})
}

// ListChannelIDs returns the channel IDs a user subscribes to
func (r *MongoSubscriptionRepository) ListChannelIDs(ctx context.Context, subscriber primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.listEdgeIDs(ctx, bson.M{"subscriber": subscriber}, func(s models.Subscription) primitive.ObjectID {
		return s.Channel
	})
}

func (r *MongoSubscriptionRepository) listEdgeIDs(ctx context.Context, filter bson.M, pick func(models.Subscription) primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(subs))
	for i, s := range subs {
		ids[i] = pick(s)
	}
	return ids, nil
}

func subFilter(subscriber, channel primitive.ObjectID) bson.M {
	return bson.M{"subscriber": subscriber, "channel": channel}
}
