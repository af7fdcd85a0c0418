package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tweet represents a short text post by a channel
type Tweet struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Content   string             `json:"content" bson:"content"`
	Owner     primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// TweetRequest defines the request body for creating or editing a tweet
type TweetRequest struct {
	Content string `json:"content" validate:"required,min=1,max=280"`
}
