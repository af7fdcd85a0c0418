package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeService implements the toggle-state engine: idempotent like and
// subscription toggling with existence-check-then-insert-or-delete semantics.
// Counts are never cached on the target; the aggregation layer derives them
// at read time.
type LikeService struct {
	likes    repositories.LikeRepository
	subs     repositories.SubscriptionRepository
	users    repositories.UserRepository
	videos   repositories.VideoRepository
	comments repositories.CommentRepository
	tweets   repositories.TweetRepository
}

// NewLikeService creates a new LikeService
func NewLikeService(
	likes repositories.LikeRepository,
	subs repositories.SubscriptionRepository,
	users repositories.UserRepository,
	videos repositories.VideoRepository,
	comments repositories.CommentRepository,
	tweets repositories.TweetRepository,
) *LikeService {
	return &LikeService{
		likes:    likes,
		subs:     subs,
		users:    users,
		videos:   videos,
		comments: comments,
		tweets:   tweets,
	}
}

// ToggleLike flips the like state for a (target, liker) pair and returns the
// new membership state. Two sequential calls return to the original state. A
// concurrent duplicate create is absorbed: the pair ends up liked either way.
func (s *LikeService) ToggleLike(ctx context.Context, kind models.LikeTarget, targetID string, likerID primitive.ObjectID) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("unknown like target %q: %w", kind, ErrValidation)
	}
	id, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return false, fmt.Errorf("malformed target id %q: %w", targetID, ErrValidation)
	}

	if err := s.targetExists(ctx, kind, id); err != nil {
		return false, err
	}

	_, err = s.likes.FindLike(ctx, kind, id, likerID)
	switch {
	case err == nil:
		// Present: un-like. Delete of an already deleted like is a no-op.
		if err := s.likes.DeleteLike(ctx, kind, id, likerID); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, repositories.ErrNotFound):
		like := &models.Like{TargetKind: kind, TargetID: id, LikedBy: likerID}
		if err := s.likes.CreateLike(ctx, like); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				// Lost the race to another like from the same user; the end
				// state is what this caller wanted.
				return true, nil
			}
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// ToggleSubscription flips the subscriber -> channel edge and returns the new
// membership state. Self-subscription is rejected.
func (s *LikeService) ToggleSubscription(ctx context.Context, channelID string, subscriberID primitive.ObjectID) (bool, error) {
	chID, err := primitive.ObjectIDFromHex(channelID)
	if err != nil {
		return false, fmt.Errorf("malformed channel id %q: %w", channelID, ErrValidation)
	}
	if chID == subscriberID {
		return false, fmt.Errorf("cannot subscribe to your own channel: %w", ErrValidation)
	}

	if _, err := s.users.GetUserByID(ctx, chID); err != nil {
		return false, err
	}

	_, err = s.subs.FindSubscription(ctx, subscriberID, chID)
	switch {
	case err == nil:
		if err := s.subs.DeleteSubscription(ctx, subscriberID, chID); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, repositories.ErrNotFound):
		sub := &models.Subscription{Subscriber: subscriberID, Channel: chID}
		if err := s.subs.CreateSubscription(ctx, sub); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				return true, nil
			}
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (s *LikeService) targetExists(ctx context.Context, kind models.LikeTarget, id primitive.ObjectID) error {
	var err error
	switch kind {
	case models.LikeTargetVideo:
		_, err = s.videos.GetVideoByID(ctx, id)
	case models.LikeTargetComment:
		_, err = s.comments.GetCommentByID(ctx, id)
	case models.LikeTargetTweet:
		_, err = s.tweets.GetTweetByID(ctx, id)
	}
	return err
}
