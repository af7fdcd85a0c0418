package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/videotube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoFilter selects a set of videos for listing and counting. Query is a
// case-insensitive substring match over title or description. SortField must
// already be validated by the caller.
type VideoFilter struct {
	Query   string
	Owner   *primitive.ObjectID
	SortBy  string
	SortDir int
	Skip    int64
	Limit   int64
}

// VideoRepository defines the interface for video data operations
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	GetVideosByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error)
	ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error)
	CountVideos(ctx context.Context, filter VideoFilter) (int64, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error)
	UpdateVideo(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) error
	SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	DeleteVideo(ctx context.Context, id primitive.ObjectID) error
}

// MongoVideoRepository implements VideoRepository for MongoDB
type MongoVideoRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a new MongoVideoRepository
func NewMongoVideoRepository(db *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{collection: db.Collection("videos")}
}

// CreateVideo creates a new video document
func (r *MongoVideoRepository) CreateVideo(ctx context.Context, video *models.Video) error {
	video.ID = primitive.NewObjectID()
	video.CreatedAt = time.Now()
	video.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, video)
	return err
}

// GetVideoByID retrieves a video by ID
func (r *MongoVideoRepository) GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("video %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &video, nil
}

// GetVideosByIDs retrieves the videos matching the given IDs in one batch
func (r *MongoVideoRepository) GetVideosByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// ListVideos retrieves a sorted, paginated page of videos matching the filter
func (r *MongoVideoRepository) ListVideos(ctx context.Context, filter VideoFilter) ([]models.Video, error) {
	sortDir := filter.SortDir
	if sortDir != 1 && sortDir != -1 {
		sortDir = -1
	}
	findOptions := options.Find().
		SetSkip(filter.Skip).
		SetLimit(filter.Limit).
		SetSort(bson.D{{Key: filter.SortBy, Value: sortDir}})

	cursor, err := r.collection.Find(ctx, videoQuery(filter), findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// CountVideos counts the videos matching the filter, ignoring pagination
func (r *MongoVideoRepository) CountVideos(ctx context.Context, filter VideoFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, videoQuery(filter))
}

// ListByOwner retrieves all videos owned by a user, newest first
func (r *MongoVideoRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []models.Video
	if err = cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// UpdateVideo updates the editable fields of a video. Empty values keep the
// current field.
func (r *MongoVideoRepository) UpdateVideo(ctx context.Context, id primitive.ObjectID, title, description, thumbnail string) error {
	set := bson.M{"updated_at": time.Now()}
	if title != "" {
		set["title"] = title
	}
	if description != "" {
		set["description"] = description
	}
	if thumbnail != "" {
		set["thumbnail"] = thumbnail
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("video %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// SetPublished sets the published flag of a video
func (r *MongoVideoRepository) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	update := bson.M{"$set": bson.M{"is_published": published, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("video %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// IncrementViews atomically increments the view counter by 1
func (r *MongoVideoRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// DeleteVideo deletes a video document by ID
func (r *MongoVideoRepository) DeleteVideo(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("video %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func videoQuery(filter VideoFilter) bson.M {
	query := bson.M{}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = []bson.M{
			{"title": pattern},
			{"description": pattern},
		}
	}
	if filter.Owner != nil {
		query["owner"] = *filter.Owner
	}
	return query
}
