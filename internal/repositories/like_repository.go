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

// LikeRepository defines the interface for like data operations. The unique
// index on (target_kind, target_id, liked_by) is the backstop for concurrent
// toggles: a racing duplicate create surfaces as ErrConflict and a racing
// delete of an already deleted like is a no-op.
type LikeRepository interface {
	FindLike(ctx context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) (*models.Like, error)
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) error
	CountByTarget(ctx context.Context, kind models.LikeTarget, targetID primitive.ObjectID) (int64, error)
	CountByTargets(ctx context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	FilterLikedTargets(ctx context.Context, kind models.LikeTarget, likedBy primitive.ObjectID, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	ListVideoIDsLikedBy(ctx context.Context, likedBy primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByTarget(ctx context.Context, kind models.LikeTarget, targetID primitive.ObjectID) error
	DeleteByTargets(ctx context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) error
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection("likes")}
}

// FindLike retrieves the like for a (target, liker) pair if one exists
func (r *MongoLikeRepository) FindLike(ctx context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) (*models.Like, error) {
	var like models.Like
	err := r.collection.FindOne(ctx, likeFilter(kind, targetID, likedBy)).Decode(&like)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("like on %s %s: %w", kind, targetID.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &like, nil
}

// CreateLike creates a like record. A concurrent duplicate is rejected by the
// unique index and reported as ErrConflict.
func (r *MongoLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("already liked: %w", ErrConflict)
	}
	return err
}

// DeleteLike removes the like for a (target, liker) pair. Deleting an absent
// like is a no-op.
func (r *MongoLikeRepository) DeleteLike(ctx context.Context, kind models.LikeTarget, targetID, likedBy primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, likeFilter(kind, targetID, likedBy))
	return err
}

// CountByTarget counts the likes on a single target
func (r *MongoLikeRepository) CountByTarget(ctx context.Context, kind models.LikeTarget, targetID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"target_kind": kind, "target_id": targetID})
}

// CountByTargets counts likes per target for a batch of targets in one query
func (r *MongoLikeRepository) CountByTargets(ctx context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"target_kind": kind, "target_id": bson.M{"$in": targetIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$target_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// FilterLikedTargets returns, for a batch of targets, the subset the given
// user has liked
func (r *MongoLikeRepository) FilterLikedTargets(ctx context.Context, kind models.LikeTarget, likedBy primitive.ObjectID, targetIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := make(map[primitive.ObjectID]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return liked, nil
	}

	filter := bson.M{
		"target_kind": kind,
		"liked_by":    likedBy,
		"target_id":   bson.M{"$in": targetIDs},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	for _, l := range likes {
		liked[l.TargetID] = true
	}
	return liked, nil
}

// ListVideoIDsLikedBy returns the IDs of every video the user has liked
func (r *MongoLikeRepository) ListVideoIDsLikedBy(ctx context.Context, likedBy primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"target_kind": models.LikeTargetVideo, "liked_by": likedBy}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(likes))
	for i, l := range likes {
		ids[i] = l.TargetID
	}
	return ids, nil
}

// DeleteByTarget removes every like on a target (cascade on target delete)
func (r *MongoLikeRepository) DeleteByTarget(ctx context.Context, kind models.LikeTarget, targetID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"target_kind": kind, "target_id": targetID})
	return err
}

// DeleteByTargets removes every like on a batch of targets
func (r *MongoLikeRepository) DeleteByTargets(ctx context.Context, kind models.LikeTarget, targetIDs []primitive.ObjectID) error {
	if len(targetIDs) == 0 {
		return nil
	}
	_, err := r.collection.DeleteMany(ctx, bson.M{"target_kind": kind, "target_id": bson.M{"$in": targetIDs}})
	return err
}

func likeFilter(kind models.LikeTarget, targetID, likedBy primitive.ObjectID) bson.M {
	return bson.M{"target_kind": kind, "target_id": targetID, "liked_by": likedBy}
}
