package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/videotube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error)
	UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) error
	DeleteTweet(ctx context.Context, id primitive.ObjectID) error
}

// MongoTweetRepository implements TweetRepository for MongoDB
type MongoTweetRepository struct {
	collection *mongo.Collection
}

// NewMongoTweetRepository creates a new MongoTweetRepository
func NewMongoTweetRepository(db *mongo.Database) *MongoTweetRepository {
	return &MongoTweetRepository{collection: db.Collection("tweets")}
}

// CreateTweet creates a new tweet
func (r *MongoTweetRepository) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	tweet.ID = primitive.NewObjectID()
	tweet.CreatedAt = time.Now()
	tweet.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, tweet)
	return err
}

// GetTweetByID retrieves a tweet by ID
func (r *MongoTweetRepository) GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("tweet %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &tweet, nil
}

// ListByOwner retrieves a user's tweets, newest first
func (r *MongoTweetRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tweets []models.Tweet
	if err = cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// UpdateTweet replaces the content of a tweet
func (r *MongoTweetRepository) UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) error {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("tweet %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteTweet deletes a tweet by ID
func (r *MongoTweetRepository) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("tweet %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
