package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account / channel stored in MongoDB.
// Password and RefreshToken are sensitive: they are excluded from JSON
// serialization and must never be copied into a view DTO.
type User struct {
	ID           primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	FullName     string               `json:"full_name" bson:"full_name"`
	Email        string               `json:"email" bson:"email"`
	Avatar       string               `json:"avatar" bson:"avatar"`
	CoverImage   string               `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	Password     string               `json:"-" bson:"password"`
	RefreshToken string               `json:"-" bson:"refresh_token,omitempty"`
	WatchHistory []primitive.ObjectID `json:"-" bson:"watch_history,omitempty"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserProfile is the sanitized projection of a User returned by the API.
type UserProfile struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	FullName   string             `json:"full_name"`
	Email      string             `json:"email"`
	Avatar     string             `json:"avatar"`
	CoverImage string             `json:"cover_image,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ToProfile strips the sensitive fields from a User.
func (u *User) ToProfile() *UserProfile {
	return &UserProfile{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
	}
}

// OwnerInfo is the minimal owner projection embedded in aggregated views.
type OwnerInfo struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Avatar   string             `json:"avatar"`
}

// ToOwnerInfo projects a User down to the fields views embed.
func (u *User) ToOwnerInfo() OwnerInfo {
	return OwnerInfo{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

// LoginRequest defines the request body for signing in
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// RefreshRequest defines the request body for rotating a session
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest defines the request body for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateAccountRequest defines the request body for updating profile details
type UpdateAccountRequest struct {
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=2,max=80"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// AccessTokenClaims are custom claims extending standard jwt.RegisteredClaims.
// Carried by the short-lived access token.
type AccessTokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims carry only the user ID.
type RefreshTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
