package services

import (
	"context"
	"log"

	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryService implements the side-effect engine: watch-history appends and
// view-counter increments triggered by video detail reads. Both writes are
// best-effort; failures are logged as recoverable and never fail the read
// that triggered them.
type HistoryService struct {
	users  repositories.UserRepository
	videos repositories.VideoRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(users repositories.UserRepository, videos repositories.VideoRepository) *HistoryService {
	return &HistoryService{users: users, videos: videos}
}

// RecordView appends the video to the viewer's watch history (append-only, a
// re-watch keeps its original slot) and increments the video's view counter.
// The increment is a single atomic $inc, so concurrent views never lose
// updates.
func (s *HistoryService) RecordView(ctx context.Context, videoID primitive.ObjectID, viewer *primitive.ObjectID) {
	if viewer != nil {
		if err := s.users.AddToWatchHistory(ctx, *viewer, videoID); err != nil {
			log.Printf("recoverable: failed to append video %s to watch history of %s: %v", videoID.Hex(), viewer.Hex(), err)
		}
	}

	if err := s.videos.IncrementViews(ctx, videoID); err != nil {
		log.Printf("recoverable: failed to increment views for video %s: %v", videoID.Hex(), err)
	}
}
