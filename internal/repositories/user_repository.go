package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/videotube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateAccountDetails(ctx context.Context, id primitive.ObjectID, fullName, email string) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error
	UpdateCoverImage(ctx context.Context, id primitive.ObjectID, coverURL string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user. Username and email are stored lowercased so
// uniqueness and lookups are case-insensitive.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("username or email already taken: %w", ErrConflict)
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username (case-insensitive)
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": strings.ToLower(username)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsernameOrEmail retrieves a user matching the identifier as either
// username or email (case-insensitive)
func (r *MongoUserRepository) GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.ToLower(identifier)
	filter := bson.M{"$or": []bson.M{
		{"username": identifier},
		{"email": identifier},
	}}
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %q: %w", identifier, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users matching the given IDs in one batch
func (r *MongoUserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateAccountDetails updates the mutable profile fields of a user
func (r *MongoUserRepository) UpdateAccountDetails(ctx context.Context, id primitive.ObjectID, fullName, email string) error {
	set := bson.M{"updated_at": time.Now()}
	if fullName != "" {
		set["full_name"] = fullName
	}
	if email != "" {
		set["email"] = strings.ToLower(email)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email already taken: %w", ErrConflict)
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// UpdateAvatar replaces the user's avatar URI
func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error {
	return r.setField(ctx, id, "avatar", avatarURL)
}

// UpdateCoverImage replaces the user's cover image URI
func (r *MongoUserRepository) UpdateCoverImage(ctx context.Context, id primitive.ObjectID, coverURL string) error {
	return r.setField(ctx, id, "cover_image", coverURL)
}

// UpdatePassword replaces the stored password hash
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.setField(ctx, id, "password", passwordHash)
}

// SetRefreshToken overwrites the stored refresh token, invalidating any other
// outstanding session for this user
func (r *MongoUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.setField(ctx, id, "refresh_token", token)
}

// RotateRefreshToken atomically swaps the stored refresh token from current to
// next in a single conditional update. Returns ErrNotFound when the stored
// value does not equal current, which covers both rotated-out token reuse and
// a logged-out session.
func (r *MongoUserRepository) RotateRefreshToken(ctx context.Context, id primitive.ObjectID, current, next string) error {
	filter := bson.M{"_id": id, "refresh_token": current}
	update := bson.M{"$set": bson.M{"refresh_token": next, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("stored refresh token mismatch for user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token. Clearing an already
// cleared token is a no-op, so logout stays idempotent.
func (r *MongoUserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"refresh_token": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// AddToWatchHistory appends a video to the user's watch history unless it is
// already present. Append-only: a re-watched video keeps its original slot.
func (r *MongoUserRepository) AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"watch_history": videoID}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepository) setField(ctx context.Context, id primitive.ObjectID, field, value string) error {
	update := bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}
