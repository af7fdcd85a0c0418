package models

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// View DTOs returned by the aggregation layer. They embed only non-sensitive
// document fields plus derived counts and viewer-scoped flags, so a password
// hash or stored refresh token can never leak through them.

// VideoView is a video augmented with its owner projection, like count and
// the viewer-scoped liked flag.
type VideoView struct {
	Video
	Owner     OwnerInfo `json:"owner"`
	LikeCount int64     `json:"like_count"`
	IsLiked   bool      `json:"is_liked"`
}

// CommentView is a comment augmented with its owner projection, like count
// and the viewer-scoped liked flag.
type CommentView struct {
	Comment
	Owner     OwnerInfo `json:"owner"`
	LikeCount int64     `json:"like_count"`
	HasLiked  bool      `json:"has_liked"`
}

// TweetView is a tweet augmented with its owner projection, like count and
// the viewer-scoped liked flag.
type TweetView struct {
	Tweet
	Owner     OwnerInfo `json:"owner"`
	LikeCount int64     `json:"like_count"`
	HasLiked  bool      `json:"has_liked"`
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                primitive.ObjectID `json:"id"`
	Username          string             `json:"username"`
	FullName          string             `json:"full_name"`
	Avatar            string             `json:"avatar"`
	CoverImage        string             `json:"cover_image,omitempty"`
	SubscriberCount   int64              `json:"subscriber_count"`
	SubscribedToCount int64              `json:"subscribed_to_count"`
	IsSubscribed      bool               `json:"is_subscribed"`
}

// ChannelStats are the dashboard aggregates for a channel.
type ChannelStats struct {
	TotalVideos      int64 `json:"total_videos"`
	TotalViews       int64 `json:"total_views"`
	TotalLikes       int64 `json:"total_likes"`
	TotalSubscribers int64 `json:"total_subscribers"`
}

// PlaylistView is a playlist with its published videos embedded.
type PlaylistView struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Owner       primitive.ObjectID `json:"owner"`
	Videos      []VideoView        `json:"videos"`
	VideoCount  int                `json:"video_count"`
}

// PageMeta carries offset-based pagination metadata.
type PageMeta struct {
	CurrentPage     int   `json:"current_page"`
	TotalPages      int   `json:"total_pages"`
	TotalItems      int64 `json:"total_items"`
	ItemsPerPage    int   `json:"items_per_page"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}

// NewPageMeta computes pagination metadata for a page of results.
func NewPageMeta(page, limit int, totalItems int64) PageMeta {
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	return PageMeta{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      totalItems,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// VideoPage is a paginated page of video views.
type VideoPage struct {
	Videos []VideoView `json:"videos"`
	Meta   PageMeta    `json:"meta"`
}

// CommentPage is a paginated page of comment views.
type CommentPage struct {
	Comments []CommentView `json:"comments"`
	Meta     PageMeta      `json:"meta"`
}
