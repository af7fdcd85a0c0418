package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video represents an uploaded video stored in MongoDB
type Video struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	VideoFile   string             `json:"video_file" bson:"video_file"`
	Thumbnail   string             `json:"thumbnail" bson:"thumbnail"`
	Duration    float64            `json:"duration" bson:"duration"`
	Views       int64              `json:"views" bson:"views"`
	IsPublished bool               `json:"is_published" bson:"is_published"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublishVideoRequest defines the multipart form fields for publishing a video
type PublishVideoRequest struct {
	Title       string `form:"title" validate:"required,min=1,max=120"`
	Description string `form:"description" validate:"required,min=1,max=2000"`
}

// UpdateVideoRequest defines the request body for editing video details
type UpdateVideoRequest struct {
	Title       string `json:"title,omitempty" form:"title" validate:"omitempty,min=1,max=120"`
	Description string `json:"description,omitempty" form:"description" validate:"omitempty,min=1,max=2000"`
}
