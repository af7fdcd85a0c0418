package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeTarget identifies the kind of document a Like points at.
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// Valid reports whether the target kind is one of the known kinds.
func (t LikeTarget) Valid() bool {
	switch t {
	case LikeTargetVideo, LikeTargetComment, LikeTargetTweet:
		return true
	}
	return false
}

// Like represents a like on exactly one video, comment or tweet. The tagged
// {kind, target} pair replaces three mutually exclusive nullable references;
// a compound unique index on (target_kind, target_id, liked_by) guarantees at
// most one Like per target per user.
type Like struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	TargetKind LikeTarget         `json:"target_kind" bson:"target_kind"`
	TargetID   primitive.ObjectID `json:"target_id" bson:"target_id"`
	LikedBy    primitive.ObjectID `json:"liked_by" bson:"liked_by"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}
