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

// PlaylistRepository defines the interface for playlist data operations
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Playlist, error)
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error
	UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) error
	DeletePlaylist(ctx context.Context, id primitive.ObjectID) error
	RemoveVideoFromAll(ctx context.Context, videoID primitive.ObjectID) error
}

// MongoPlaylistRepository implements PlaylistRepository for MongoDB
type MongoPlaylistRepository struct {
	collection *mongo.Collection
}

// NewMongoPlaylistRepository creates a new MongoPlaylistRepository
func NewMongoPlaylistRepository(db *mongo.Database) *MongoPlaylistRepository {
	return &MongoPlaylistRepository{collection: db.Collection("playlists")}
}

// CreatePlaylist creates a new playlist
func (r *MongoPlaylistRepository) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	playlist.ID = primitive.NewObjectID()
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	playlist.CreatedAt = time.Now()
	playlist.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, playlist)
	return err
}

// GetPlaylistByID retrieves a playlist by ID
func (r *MongoPlaylistRepository) GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("playlist %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &playlist, nil
}

// ListByOwner retrieves a user's playlists, newest first
func (r *MongoPlaylistRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Playlist, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []models.Playlist
	if err = cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// AddVideo appends a video to the playlist, suppressing duplicates
func (r *MongoPlaylistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("playlist %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// RemoveVideo removes a video reference from the playlist
func (r *MongoPlaylistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("playlist %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// UpdatePlaylist renames a playlist and/or replaces its description
func (r *MongoPlaylistRepository) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) error {
	set := bson.M{"updated_at": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if description != "" {
		set["description"] = description
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("playlist %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// DeletePlaylist deletes a playlist by ID
func (r *MongoPlaylistRepository) DeletePlaylist(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("playlist %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// RemoveVideoFromAll pulls a deleted video out of every playlist referencing it
func (r *MongoPlaylistRepository) RemoveVideoFromAll(ctx context.Context, videoID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"videos": videoID}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"videos": videoID}, update)
	return err
}
