package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublishInput carries the fields required to publish a video. VideoFileURL
// and ThumbnailURL must be durable references produced by asset ingestion.
type PublishInput struct {
	Title        string
	Description  string
	VideoFileURL string
	ThumbnailURL string
	Duration     float64
	Owner        primitive.ObjectID
}

// VideoService owns video write operations: publishing, metadata updates,
// publish toggling, and deletion with its dependent-record cascade.
type VideoService struct {
	videos    repositories.VideoRepository
	comments  repositories.CommentRepository
	likes     repositories.LikeRepository
	playlists repositories.PlaylistRepository
}

// NewVideoService creates a new VideoService
func NewVideoService(
	videos repositories.VideoRepository,
	comments repositories.CommentRepository,
	likes repositories.LikeRepository,
	playlists repositories.PlaylistRepository,
) *VideoService {
	return &VideoService{
		videos:    videos,
		comments:  comments,
		likes:     likes,
		playlists: playlists,
	}
}

// Publish creates a new published video record from ingested assets.
func (s *VideoService) Publish(ctx context.Context, input PublishInput) (*models.Video, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if input.VideoFileURL == "" || input.ThumbnailURL == "" {
		return nil, fmt.Errorf("asset ingestion did not yield usable references: %w", ErrDependency)
	}

	video := &models.Video{
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		VideoFile:   input.VideoFileURL,
		Thumbnail:   input.ThumbnailURL,
		Duration:    input.Duration,
		IsPublished: true,
		Owner:       input.Owner,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Update replaces title and description, and the thumbnail when a new
// reference was ingested. Only the owner may update.
func (s *VideoService) Update(ctx context.Context, videoID string, ownerID primitive.ObjectID, title, description, thumbnailURL string) (*models.Video, error) {
	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}

	if err := s.videos.UpdateVideo(ctx, video.ID, title, strings.TrimSpace(description), thumbnailURL); err != nil {
		return nil, err
	}
	return s.videos.GetVideoByID(ctx, video.ID)
}

// TogglePublish flips the video's visibility flag and returns the new value.
func (s *VideoService) TogglePublish(ctx context.Context, videoID string, ownerID primitive.ObjectID) (bool, error) {
	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return false, err
	}

	next := !video.IsPublished
	if err := s.videos.SetPublished(ctx, video.ID, next); err != nil {
		return false, err
	}
	return next, nil
}

// Delete removes a video and every dependent record: its likes, its comments,
// the likes on those comments, and its membership in any playlist. Watch
// history entries are left in place; history reads skip dangling references.
func (s *VideoService) Delete(ctx context.Context, videoID string, ownerID primitive.ObjectID) error {
	video, err := s.ownedVideo(ctx, videoID, ownerID)
	if err != nil {
		return err
	}

	if err := s.videos.DeleteVideo(ctx, video.ID); err != nil {
		return err
	}
	if err := s.likes.DeleteByTarget(ctx, models.LikeTargetVideo, video.ID); err != nil {
		return fmt.Errorf("failed to cascade video likes: %w", err)
	}

	commentIDs, err := s.comments.DeleteByVideo(ctx, video.ID)
	if err != nil {
		return fmt.Errorf("failed to cascade comments: %w", err)
	}
	if err := s.likes.DeleteByTargets(ctx, models.LikeTargetComment, commentIDs); err != nil {
		return fmt.Errorf("failed to cascade comment likes: %w", err)
	}

	if err := s.playlists.RemoveVideoFromAll(ctx, video.ID); err != nil {
		return fmt.Errorf("failed to cascade playlist entries: %w", err)
	}
	return nil
}

// ownedVideo loads a video and enforces that ownerID owns it. A non-owner
// gets ErrUnauthorized, never a silent no-op.
func (s *VideoService) ownedVideo(ctx context.Context, videoID string, ownerID primitive.ObjectID) (*models.Video, error) {
	id, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return nil, fmt.Errorf("malformed video id %q: %w", videoID, ErrValidation)
	}
	video, err := s.videos.GetVideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Owner != ownerID {
		return nil, fmt.Errorf("video %s is not owned by caller: %w", videoID, ErrUnauthorized)
	}
	return video, nil
}
