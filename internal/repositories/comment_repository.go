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

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]models.Comment, error)
	CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, content string) error
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

// CreateComment creates a new comment
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("comment %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &comment, nil
}

// ListByVideo retrieves a page of comments for a video, newest first
func (r *MongoCommentRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"video": videoID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CountByVideo counts the comments on a video
func (r *MongoCommentRepository) CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"video": videoID})
}

// UpdateComment replaces the content of a comment
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) error {
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("comment %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteComment deletes a comment by ID
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// DeleteByVideo deletes every comment on a video and returns the IDs of the
// deleted comments so the caller can cascade their likes.
func (r *MongoCommentRepository) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	findOptions := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"video": videoID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	if _, err := r.collection.DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		return nil, err
	}
	return ids, nil
}
